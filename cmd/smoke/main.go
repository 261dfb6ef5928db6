package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Smoke test against a running server: one streamed turn, then the thread and
// chat list reads.

var baseURL = flag.String("url", "http://localhost:3000", "server base URL")

// Pretty print JSON helper
func prettyPrint(body []byte) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		fmt.Println(string(body))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

// Request helper
func sendRequest(method, path string, body interface{}) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, *baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func streamTurn(chatId, content string) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"chatId":   chatId,
		"messages": []map[string]string{{"role": "user", "content": content}},
	})

	resp, err := http.Post(*baseURL+"/api/chat", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %s: %s", resp.Status, body)
	}

	event := ""
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			switch event {
			case "done":
				fmt.Println()
				color.Green("done %s", data)
			case "error":
				fmt.Println()
				color.Red("stream error %s", data)
			default:
				var chunk struct {
					Content string `json:"content"`
				}
				if err := json.Unmarshal([]byte(data), &chunk); err == nil {
					fmt.Print(chunk.Content)
				}
			}
		case line == "":
			event = ""
		}
	}
	return scanner.Err()
}

func main() {
	flag.Parse()
	chatId := uuid.NewString()
	failed := false

	color.Cyan("🚀 Starting chat API smoke test (%s)\n", *baseURL)

	color.Yellow("\n1. Health")
	resp, body, err := sendRequest(http.MethodGet, "/", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	color.Green("Status: %s", resp.Status)
	prettyPrint(body)

	color.Yellow("\n2. Stream a turn (chat %s)", chatId)
	if err := streamTurn(chatId, "Give me one fun fact about octopuses."); err != nil {
		color.Red("Failed: %v", err)
		failed = true
	}

	color.Yellow("\n3. Thread")
	resp, body, err = sendRequest(http.MethodGet, "/api/messages/"+chatId, nil)
	if err != nil {
		color.Red("Failed: %v", err)
		failed = true
	} else {
		color.Green("Status: %s", resp.Status)
		prettyPrint(body)
	}

	color.Yellow("\n4. Chat list")
	resp, body, err = sendRequest(http.MethodGet, "/api/chats", nil)
	if err != nil {
		color.Red("Failed: %v", err)
		failed = true
	} else {
		color.Green("Status: %s", resp.Status)
		prettyPrint(body)
	}

	if failed {
		os.Exit(1)
	}
}
