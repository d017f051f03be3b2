package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"docqa/internal/models"

	"github.com/fatih/color"
)

var (
	apiURL  = flag.String("api", "http://localhost:8080", "docqa api base URL")
	timeout = flag.Duration("timeout", 120*time.Second, "per-request timeout")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupts
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nShutting down...")
		cancel()
		os.Exit(0)
	}()

	client := &apiClient{
		base: strings.TrimRight(*apiURL, "/"),
		http: &http.Client{Timeout: *timeout},
	}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println(boldGreen("docqa chat"))
	fmt.Printf("API: %s\n", boldCyan(client.base))
	fmt.Println("Ask a question and press Enter. Commands: 'upload <file.pdf> ...', 'docs', 'exit'.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			break
		}

		if rest, ok := strings.CutPrefix(line, "upload "); ok {
			uploadFiles(ctx, client, strings.Fields(rest))
			continue
		}
		if strings.EqualFold(line, "docs") {
			listDocuments(ctx, client)
			continue
		}

		fmt.Print(boldCyan("Answer: "))
		answer, err := client.ask(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			fmt.Println("\nMake sure the api is running with: go run ./cmd/api")
			continue
		}
		fmt.Println(answer)
		fmt.Println()
	}
}

func uploadFiles(ctx context.Context, client *apiClient, paths []string) {
	if len(paths) == 0 {
		fmt.Println("usage: upload <file.pdf> [more.pdf ...]")
		return
	}
	summaries, err := client.upload(ctx, paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}

	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	for _, s := range summaries {
		status := green(string(s.Status))
		switch s.Status {
		case models.StatusDegraded:
			status = yellow(string(s.Status))
		case models.StatusFailed:
			status = red(string(s.Status))
		}
		fmt.Printf("  %s  %s  chunks=%d", status, s.FileName, s.ChunkCount)
		if s.Error != "" {
			fmt.Printf("  (%s)", s.Error)
		}
		fmt.Println()
	}
	fmt.Println()
}

func listDocuments(ctx context.Context, client *apiClient) {
	docs, err := client.documents(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	if len(docs) == 0 {
		fmt.Println("No documents uploaded yet.")
		fmt.Println()
		return
	}
	for _, d := range docs {
		fmt.Printf("  %s  %s\n", d.ID, d.FileName)
	}
	fmt.Println()
}

type apiClient struct {
	base string
	http *http.Client
}

func (c *apiClient) ask(ctx context.Context, question string) (string, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/ask", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	raw, status, err := c.do(req)
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return "", apiErrorFromBody(status, raw)
	}
	var out struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode answer: %w", err)
	}
	return out.Answer, nil
}

func (c *apiClient) upload(ctx context.Context, paths []string) ([]models.DocumentSummary, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		fw, err := mw.CreateFormFile("files", filepath.Base(p))
		if err == nil {
			_, err = io.Copy(fw, f)
		}
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("add %s: %w", p, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	raw, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, apiErrorFromBody(status, raw)
	}
	var out struct {
		Uploaded []models.DocumentSummary `json:"uploaded"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode upload result: %w", err)
	}
	return out.Uploaded, nil
}

func (c *apiClient) documents(ctx context.Context) ([]models.DocumentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/documents", nil)
	if err != nil {
		return nil, err
	}
	raw, status, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, apiErrorFromBody(status, raw)
	}
	var out struct {
		Documents []models.DocumentRecord `json:"documents"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	return out.Documents, nil
}

func (c *apiClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

func apiErrorFromBody(status int, raw []byte) error {
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err == nil && env.Error.Message != "" {
		return fmt.Errorf("%s (%s)", env.Error.Message, env.Error.Code)
	}
	return fmt.Errorf("api returned status %d", status)
}
