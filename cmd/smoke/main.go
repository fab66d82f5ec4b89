package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"scoresheet/internal/schemas"
)

var opts struct {
	base   string
	tester string
	user   string
	model  string
}

var rootCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Upload, score, save and reload a workbook against a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&opts.base, "base", envOr("API_BASE_URL", "http://localhost:7890"), "server base URL")
	rootCmd.Flags().StringVar(&opts.tester, "tester", "smoke", "tester name")
	rootCmd.Flags().StringVar(&opts.user, "user", "smoke-user", "user name")
	rootCmd.Flags().StringVar(&opts.model, "model", fmt.Sprintf("smoke-%d", time.Now().Unix()), "model name")
}

func run(ctx context.Context) error {
	httpc := &http.Client{Timeout: 12 * time.Second}

	book, err := workbook()
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}

	// 1) Upload
	var first schemas.SessionOut
	if err := upload(ctx, httpc, "", book, &first); err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	fmt.Printf("loaded session=%s rows=%d output=%s\n", first.SessionID, len(first.Grid.Rows), first.OutputPath)

	// 2) Score two rows and save
	edit := schemas.EditRequest{Grid: first.Grid}
	edit.Grid.Rows = [][]string{
		{first.Grid.Rows[0][0], "", "", "5"},
		{first.Grid.Rows[2][0], "", "", "2"},
	}
	var saved schemas.SaveOut
	if err := postJSON(ctx, httpc, opts.base+"/sessions/"+first.SessionID+"/save", edit, &saved); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	fmt.Printf("%s (mirror=%q)\n", saved.Status, saved.Mirror)

	// 3) Reload in a fresh session and expect the scores back
	var again schemas.SessionOut
	if err := upload(ctx, httpc, "", book, &again); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	want := []string{"5", "", "2"}
	for i, row := range again.Grid.Rows {
		if row[3] != want[i] {
			return fmt.Errorf("row %s: score %q after reload, want %q", row[0], row[3], want[i])
		}
	}
	fmt.Printf("reload restored %d scores\n", again.Merged)

	// 4) Clear one and save again
	cleared := schemas.EditRequest{Clear: []string{again.Grid.Rows[0][0]}}
	if err := postJSON(ctx, httpc, opts.base+"/sessions/"+again.SessionID+"/save", cleared, &saved); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	if saved.Saved.Scored != 1 {
		return fmt.Errorf("scored=%d after clear, want 1", saved.Saved.Scored)
	}
	fmt.Printf("smoke run OK. saved=%s\n", saved.Saved.Path)
	return nil
}

// workbook builds a three row sheet with markdown output.
func workbook() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]any{
		{"ID", "question", "response"},
		{101, "What is 2+2?", "**4**"},
		{102, "Name a prime.", "`7` is prime"},
		{103, "List two colors.", "- red\n- blue"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// --- helpers ---

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func upload(ctx context.Context, c *http.Client, sessionID string, book []byte, out any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{"tester": opts.tester, "user": opts.user, "model": opts.model, "session_id": sessionID}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	fw, err := mw.CreateFormFile("file", "smoke.xlsx")
	if err != nil {
		return err
	}
	if _, err := fw.Write(book); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return do(ctx, c, http.MethodPost, opts.base+"/sessions", mw.FormDataContentType(), &body, out)
}

func postJSON(ctx context.Context, c *http.Client, url string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return do(ctx, c, http.MethodPost, url, "application/json", bytes.NewReader(b), out)
}

func do(ctx context.Context, c *http.Client, method, url, contentType string, body io.Reader, out any) error {
	ctx, cancel := context.WithTimeout(ctx, 12*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		b, _ := io.ReadAll(res.Body)
		var e schemas.ErrorOut
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s %s -> %d: %s", method, url, res.StatusCode, e.Error)
		}
		return fmt.Errorf("%s %s -> %d: %s", method, url, res.StatusCode, string(b))
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
