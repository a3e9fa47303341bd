package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected short unchanged, got %q", got)
	}

	if got := truncate("longerstring", 6); got != "lon..." {
		t.Fatalf("expected lon..., got %q", got)
	}
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(struct {
			A int `json:"a"`
		}{A: 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Fatalf("unexpected json output:\n%s", out)
	}
}

func TestHashPasswordCmd(t *testing.T) {
	orig := bcryptGenerate
	bcryptGenerate = func(p []byte, cost int) ([]byte, error) {
		return []byte("hashed-value"), nil
	}
	defer func() { bcryptGenerate = orig }()

	cmd := hashPasswordCmd()
	cmd.SetArgs([]string{"secret"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if strings.TrimSpace(out) != "hashed-value" {
		t.Fatalf("expected hashed-value, got %q", out)
	}
}

func newTestAPI(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestLoginCmd(t *testing.T) {
	url := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["email"] != "jane@example.com" || body["password"] != "hunter22" {
			t.Errorf("unexpected credentials %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email":"jane@example.com","jwt":"signed.token.value"}`))
	})

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--url", url, "login", "--email", "jane@example.com", "--password", "hunter22"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if strings.TrimSpace(out) != "signed.token.value" {
		t.Fatalf("expected token output, got %q", out)
	}
}

func TestLoginCmd_InvalidCredentials(t *testing.T) {
	url := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid credentials"}`))
	})

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--url", url, "login", "--email", "a@b.co", "--password", "nope"})

	err := cmd.Execute()
	if err == nil || err.Error() != "Invalid credentials (401)" {
		t.Fatalf("expected credential error, got %v", err)
	}
}

func TestAccountReconcileCmd(t *testing.T) {
	var gotMethod, gotAuth string
	url := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/api/v1/accounts/acc-1/reconciliation" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		consistent := r.Method == http.MethodPost
		json.NewEncoder(w).Encode(map[string]any{
			"account_id": "acc-1",
			"consistent": consistent,
			"repaired":   consistent,
		})
	})

	t.Run("drift without repair fails", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--url", url, "--token", "tok", "account", "reconcile", "acc-1"})

		var err error
		out := captureOutput(t, func() { err = cmd.Execute() })

		if err == nil {
			t.Fatal("expected drift to be reported as an error")
		}
		if gotMethod != http.MethodGet || gotAuth != "Bearer tok" {
			t.Fatalf("unexpected request %s with %q", gotMethod, gotAuth)
		}
		if !strings.Contains(out, `"consistent": false`) {
			t.Fatalf("expected result to be printed, got %s", out)
		}
	})

	t.Run("repair posts", func(t *testing.T) {
		cmd := newRootCmd()
		cmd.SetArgs([]string{"--url", url, "--token", "tok", "account", "reconcile", "acc-1", "--repair"})

		out := captureOutput(t, func() {
			if err := cmd.Execute(); err != nil {
				t.Fatalf("command failed: %v", err)
			}
		})

		if gotMethod != http.MethodPost {
			t.Fatalf("expected POST, got %s", gotMethod)
		}
		if !strings.Contains(out, `"repaired": true`) {
			t.Fatalf("unexpected output %s", out)
		}
	})
}

func TestAccountListCmd(t *testing.T) {
	url := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/accounts/inactive" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`[{"id":"acc-1","name":"A very long savings account name","current_balance":"10.00","pending_balance":"0"}]`))
	})

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--url", url, "account", "list", "--inactive"})

	out := captureOutput(t, func() {
		if err := cmd.Execute(); err != nil {
			t.Fatalf("command failed: %v", err)
		}
	})

	if !strings.Contains(out, "A very long savings a...") || !strings.Contains(out, "10.00") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}
