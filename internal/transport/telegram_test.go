package transport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mvoronin/jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSend_PayloadShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok": true, "result": {"message_id": 42, "chat": {"id": 7}}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN", srv.Client(), discardLogger())
	id, err := c.Send(context.Background(), 7, "<b>hello</b>", model.SendOptions{
		Keyboard: [][]string{{"Yes", "No"}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != 42 {
		t.Errorf("message id = %d, want 42", id)
	}

	if gotPath != "/botTOKEN/sendMessage" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["chat_id"].(float64) != 7 {
		t.Errorf("chat_id = %v", gotBody["chat_id"])
	}
	if gotBody["text"] != "<b>hello</b>" {
		t.Errorf("text = %v", gotBody["text"])
	}
	if gotBody["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %v", gotBody["parse_mode"])
	}
	if gotBody["disable_web_page_preview"] != true {
		t.Errorf("disable_web_page_preview = %v", gotBody["disable_web_page_preview"])
	}

	markup, ok := gotBody["reply_markup"].(map[string]interface{})
	if !ok {
		t.Fatalf("reply_markup = %v", gotBody["reply_markup"])
	}
	rows := markup["keyboard"].([]interface{})
	firstRow := rows[0].([]interface{})
	firstButton := firstRow[0].(map[string]interface{})
	if firstButton["text"] != "Yes" {
		t.Errorf("first button = %v", firstButton)
	}
	if markup["resize_keyboard"] != true || markup["one_time_keyboard"] != true {
		t.Errorf("keyboard flags = %v", markup)
	}
}

func TestSend_RemoveKeyboard(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok": true, "result": {"message_id": 1}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN", srv.Client(), discardLogger())
	if _, err := c.Send(context.Background(), 7, "done", model.SendOptions{RemoveKeyboard: true}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	markup, ok := gotBody["reply_markup"].(map[string]interface{})
	if !ok || markup["remove_keyboard"] != true {
		t.Errorf("reply_markup = %v", gotBody["reply_markup"])
	}
}

func TestSend_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok": false, "description": "Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN", srv.Client(), discardLogger())
	if _, err := c.Send(context.Background(), 7, "hi", model.SendOptions{}); err == nil {
		t.Fatal("Send: expected error for ok=false response")
	}
}

func TestEdit_PayloadShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok": true, "result": {"message_id": 42}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "TOKEN", srv.Client(), discardLogger())
	if err := c.Edit(context.Background(), 7, 42, "updated"); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	if gotPath != "/botTOKEN/editMessageText" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody["message_id"].(float64) != 42 {
		t.Errorf("message_id = %v", gotBody["message_id"])
	}
	if gotBody["text"] != "updated" {
		t.Errorf("text = %v", gotBody["text"])
	}
}

func TestPoller_DispatchesAndAdvancesOffset(t *testing.T) {
	var mu sync.Mutex
	var offsets []int64
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		if off, ok := req["offset"].(float64); ok {
			offsets = append(offsets, int64(off))
		} else {
			offsets = append(offsets, 0)
		}
		calls++
		first := calls == 1
		mu.Unlock()

		if first {
			w.Write([]byte(`{"ok": true, "result": [
				{"update_id": 10, "message": {"message_id": 1, "chat": {"id": 7}, "text": "/start"}},
				{"update_id": 11, "message": {"message_id": 2, "chat": {"id": 8}, "text": "hello"}},
				{"update_id": 12}
			]}`))
			return
		}
		w.Write([]byte(`{"ok": true, "result": []}`))
	}))
	defer srv.Close()

	var handled []string
	ctx, cancel := context.WithCancel(context.Background())
	handler := func(_ context.Context, userID int64, text string) {
		mu.Lock()
		handled = append(handled, text)
		if len(handled) == 2 {
			cancel()
		}
		mu.Unlock()
	}

	c := NewClient(srv.URL, "TOKEN", srv.Client(), discardLogger())
	p := NewPoller(c, time.Second, handler, discardLogger())

	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(handled) != 2 || handled[0] != "/start" || handled[1] != "hello" {
		t.Errorf("handled = %v", handled)
	}
	// The update without a message still advances the offset.
	if len(offsets) >= 2 && offsets[1] != 13 {
		t.Errorf("second offset = %d, want 13", offsets[1])
	}
}

func TestPoller_RetriesAfterFailure(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()

		if first {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"ok": false, "description": "boom"}`))
			return
		}
		w.Write([]byte(`{"ok": true, "result": [
			{"update_id": 1, "message": {"message_id": 1, "chat": {"id": 7}, "text": "after retry"}}
		]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var got string
	handler := func(_ context.Context, _ int64, text string) {
		mu.Lock()
		got = text
		mu.Unlock()
		cancel()
	}

	c := NewClient(srv.URL, "TOKEN", srv.Client(), discardLogger())
	p := NewPoller(c, time.Second, handler, discardLogger())
	p.retryDelay = 10 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		done <- p.Run(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not recover from a failed poll")
	}

	mu.Lock()
	defer mu.Unlock()
	if got != "after retry" {
		t.Errorf("handled text = %q", got)
	}
}
