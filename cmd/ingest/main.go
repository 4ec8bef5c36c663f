package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// Walks the knowledge base directory and uploads every markdown file to a
// running server, printing per-file results.

type uploadResult struct {
	Filename      string   `json:"filename"`
	Status        string   `json:"status"`
	ChunksCreated int      `json:"chunks_created"`
	Warnings      []string `json:"warnings"`
	Error         string   `json:"error"`
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Results []uploadResult `json:"results"`
	} `json:"data"`
	Message string `json:"message"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Info: No .env file found, using system env")
	}

	dir := os.Getenv("KNOWLEDGE_BASE_DIR")
	if dir == "" {
		dir = "knowledge_base/docs"
	}
	baseURL := os.Getenv("INGEST_SERVER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}

	color.Cyan("📚 Ingesting knowledge base from %s\n", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		color.Red("Failed to read directory: %v", err)
		os.Exit(1)
	}

	total, ok, failed := 0, 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".md") {
			continue
		}
		total++

		result, err := uploadFile(baseURL, filepath.Join(dir, entry.Name()))
		if err != nil {
			color.Red("  ✗ %s: %v", entry.Name(), err)
			failed++
			continue
		}

		if result.Status == "success" {
			color.Green("  ✓ %s (%d chunks)", result.Filename, result.ChunksCreated)
			ok++
		} else {
			color.Red("  ✗ %s: %s", result.Filename, result.Error)
			failed++
		}
		for _, warning := range result.Warnings {
			color.Yellow("    ⚠ %s", warning)
		}
	}

	fmt.Println()
	color.Cyan("Done: %d files, %d ingested, %d failed", total, ok, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func uploadFile(baseURL, path string) (*uploadResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/upload-documents", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBytes))
	}

	var out uploadResponse
	if err := json.Unmarshal(respBytes, &out); err != nil {
		return nil, err
	}
	if len(out.Data.Results) == 0 {
		return nil, fmt.Errorf("empty result from server")
	}
	return &out.Data.Results[0], nil
}
