package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type vacancy struct {
	ID                string `json:"id"`
	Slot              int    `json:"slot"`
	ClassName         string `json:"class_name"`
	AbsentTeacherName string `json:"absent_teacher_name"`
}

type candidate struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	Total       int    `json:"total"`
	Available   bool   `json:"available"`
	Reason      string `json:"reason"`
}

// Drives a deployed instance through scan, list and candidate ranking for
// one date. Commits only when -commit is set.
func main() {
	var (
		base    string
		date    string
		commit  bool
		timeout time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&date, "date", time.Now().UTC().Format("2006-01-02"), "Target date (YYYY-MM-DD)")
	flag.BoolVar(&commit, "commit", false, "Commit the top candidate of each pending vacancy")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}
	prefix := base + "/api/v1"

	var scanned []vacancy
	if err := call(client, http.MethodPost, prefix+"/substitutions/scan", map[string]string{"date": date}, &scanned); err != nil {
		log.Fatalf("scan failed: %v", err)
	}
	fmt.Printf("scan %s: %d new vacancies\n", date, len(scanned))

	var pending []vacancy
	if err := call(client, http.MethodGet, fmt.Sprintf("%s/substitutions?date=%s&pending=true", prefix, date), nil, &pending); err != nil {
		log.Fatalf("list failed: %v", err)
	}
	fmt.Printf("pending vacancies: %d\n", len(pending))

	failed := 0
	for _, vac := range pending {
		var candidates []candidate
		if err := call(client, http.MethodGet, fmt.Sprintf("%s/substitutions/%s/candidates", prefix, vac.ID), nil, &candidates); err != nil {
			log.Printf("candidates for %s failed: %v", vac.ID, err)
			failed++
			continue
		}
		fmt.Printf("%s slot %d %s (absent %s): %d candidates\n", vac.ID, vac.Slot, vac.ClassName, vac.AbsentTeacherName, len(candidates))
		for i, cand := range candidates {
			if i >= 3 {
				break
			}
			fmt.Printf("  %s total=%d available=%t %s\n", cand.TeacherName, cand.Total, cand.Available, cand.Reason)
		}

		if !commit || len(candidates) == 0 || !candidates[0].Available {
			continue
		}
		payload := map[string]string{"teacher_id": candidates[0].TeacherID}
		var resolved json.RawMessage
		if err := call(client, http.MethodPost, fmt.Sprintf("%s/substitutions/%s/commit", prefix, vac.ID), payload, &resolved); err != nil {
			log.Printf("commit %s -> %s failed: %v", vac.ID, candidates[0].TeacherID, err)
			failed++
			continue
		}
		fmt.Printf("  committed %s\n", candidates[0].TeacherID)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func call(client *http.Client, method, url string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}
	if env.Error != nil {
		return fmt.Errorf("status %d: %s %s", resp.StatusCode, env.Error.Code, env.Error.Message)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
