// Command sourcecheck validates an exam source document before it is
// pointed at a running API. It reports records the server would warn
// about or refuse to export, and exits non-zero when the document is
// unusable.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/noah-isme/exam-schedule-api/internal/models"
)

func main() {
	var (
		source  string
		timeout time.Duration
	)

	flag.StringVar(&source, "source", "exams.json", "Path or URL of the exam source document")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	payload, err := fetch(source, timeout)
	if err != nil {
		log.Fatalf("failed to read source: %v", err)
	}

	var records []models.ExamRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		log.Fatalf("source is not a JSON array of exam records: %v", err)
	}

	var missingCode, badDate, defaultedDuration int
	for i, rec := range records {
		label := fmt.Sprintf("record %d", i+1)
		if code := strings.TrimSpace(rec.CourseCode); code != "" {
			label = code
		} else {
			missingCode++
			fmt.Printf("WARN  %s: missing course_code (row stays visible but is unsearchable)\n", label)
		}
		if _, ok := rec.StartAt(); !ok {
			badDate++
			fmt.Printf("WARN  %s: exam_date %q does not parse; calendar export will be rejected\n", label, rec.ExamDate)
		}
		if !startsWithDigit(string(rec.Duration)) {
			defaultedDuration++
			fmt.Printf("INFO  %s: duration %q falls back to the default span\n", label, rec.Duration)
		}
	}

	fmt.Printf("%d record(s), %d missing course_code, %d unparseable date(s), %d defaulted duration(s)\n",
		len(records), missingCode, badDate, defaultedDuration)
	if len(records) == 0 {
		os.Exit(1)
	}
}

func startsWithDigit(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw != "" && raw[0] >= '0' && raw[0] <= '9'
}

func fetch(source string, timeout time.Duration) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		client := &http.Client{Timeout: timeout}
		resp, err := client.Get(source)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("source returned status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(source)
}
