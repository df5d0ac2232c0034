package tui

import (
	"context"
	"testing"

	"github.com/mvoronin/jobscout/internal/model"
)

func TestRenderMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"<b>Job Search Bot</b>", "Job Search Bot"},
		{"plain text", "plain text"},
		{"&lt;hello&gt; &amp; goodbye", "<hello> & goodbye"},
		{
			"🔗 <a href='https://hh.ru/vacancy/1'>View job</a>",
			"🔗 https://hh.ru/vacancy/1 View job",
		},
		{
			`<a href="https://example.com/x">View job</a>`,
			"https://example.com/x View job",
		},
	}
	for _, tt := range tests {
		if got := renderMarkup(tt.in); got != tt.want {
			t.Errorf("renderMarkup(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSenderQueuesReplies(t *testing.T) {
	s := NewSender()

	id1, err := s.Send(context.Background(), localUserID, "first", model.SendOptions{})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	id2, err := s.Send(context.Background(), localUserID, "second", model.SendOptions{
		Keyboard: [][]string{{"Yes"}},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id2 <= id1 {
		t.Errorf("ids not increasing: %d then %d", id1, id2)
	}
	if err := s.Edit(context.Background(), localUserID, id1, "edited"); err != nil {
		t.Fatalf("Edit: %v", err)
	}

	first := <-s.replies
	if first.text != "first" || first.keyboard != nil {
		t.Errorf("first = %+v", first)
	}
	second := <-s.replies
	if second.text != "second" || len(second.keyboard) != 1 {
		t.Errorf("second = %+v", second)
	}
	third := <-s.replies
	if third.text != "edited" {
		t.Errorf("third = %+v", third)
	}
}
