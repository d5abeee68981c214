package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/calebdray/storywalk/internal/handlers"
	"github.com/calebdray/storywalk/pkg/progression"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// apiError extracts the server's error message, falling back to the raw body.
func apiError(statusCode int, body []byte) error {
	var errorResp handlers.ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", statusCode, string(body))
	}
	return fmt.Errorf("%s", errorResp.Error)
}

func getJSON(client *http.Client, url string, out interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func postJSON(client *http.Client, url string, in, out interface{}) error {
	jsonData, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return apiError(resp.StatusCode, body)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func fetchTickets(client *http.Client, baseURL string) (*handlers.BalanceResponse, error) {
	var tickets handlers.BalanceResponse
	if err := getJSON(client, baseURL+"/v1/tickets", &tickets); err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	return &tickets, nil
}

func fetchStories(client *http.Client, baseURL string) ([]handlers.StoryView, error) {
	var stories []handlers.StoryView
	if err := getJSON(client, baseURL+"/v1/stories", &stories); err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

func fetchStory(client *http.Client, baseURL, id string) (*handlers.StoryView, error) {
	var story handlers.StoryView
	if err := getJSON(client, fmt.Sprintf("%s/v1/stories/%s", baseURL, id), &story); err != nil {
		return nil, err
	}
	return &story, nil
}

func fetchPuzzles(client *http.Client, baseURL string) ([]handlers.PuzzleView, error) {
	var puzzles []handlers.PuzzleView
	if err := getJSON(client, baseURL+"/v1/puzzles", &puzzles); err != nil {
		return nil, fmt.Errorf("failed to list puzzles: %w", err)
	}
	return puzzles, nil
}

func submitAnswer(client *http.Client, baseURL, puzzleKey, answer string) (*progression.Outcome, error) {
	var outcome progression.Outcome
	url := fmt.Sprintf("%s/v1/puzzles/%s/answer", baseURL, puzzleKey)
	if err := postJSON(client, url, handlers.AnswerRequest{Answer: answer}, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

func exchangeTickets(client *http.Client, baseURL, catalogKey string) (*progression.PurchaseResult, error) {
	var result progression.PurchaseResult
	url := baseURL + "/v1/tickets/exchange"
	if err := postJSON(client, url, handlers.ExchangeRequest{Key: catalogKey}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func resetProgress(client *http.Client, baseURL string) (*progression.Snapshot, error) {
	var snap progression.Snapshot
	if err := postJSON(client, baseURL+"/v1/progress/reset", struct{}{}, &snap); err != nil {
		return nil, fmt.Errorf("failed to reset progress: %w", err)
	}
	return &snap, nil
}
