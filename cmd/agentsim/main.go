// agentsim drives the reply pipeline against a throwaway database with a
// seeded random source, so agent behavior can be inspected and compared
// across runs without the server or the UI.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"banter/models"
	"banter/pkg/agent"
	"banter/pkg/store"
)

type transcriptEntry struct {
	Sender    string `json:"sender"`
	Kind      string `json:"kind"`
	Text      string `json:"text,omitempty"`
	Path      string `json:"path,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type runResult struct {
	Seed       int64             `json:"seed"`
	Messages   int               `json:"messages"`
	Replies    int               `json:"replies"`
	Transcript []transcriptEntry `json:"transcript"`
}

func main() {
	seed := flag.Int64("seed", 1, "random seed for the agent")
	messages := flag.Int("messages", 12, "number of user messages to send")
	debounceMS := flag.Int("debounce-ms", 20, "agent debounce in milliseconds")
	thinkMS := flag.Int("think-ms", 30, "agent think delay in milliseconds")
	out := flag.String("out", "", "write the JSON transcript to this file")
	flag.Parse()

	dbPath := filepath.Join(os.TempDir(), fmt.Sprintf("agentsim-%d.db", time.Now().UnixNano()))
	defer os.Remove(dbPath)

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrating: %v", err)
	}
	chat, err := st.CreateChat("Simulation")
	if err != nil {
		log.Fatalf("creating chat: %v", err)
	}

	var (
		mu      sync.Mutex
		replies int
	)
	opts := agent.Options{
		Debounce:        time.Duration(*debounceMS) * time.Millisecond,
		ThinkDelay:      time.Duration(*thinkMS) * time.Millisecond,
		ThresholdMin:    4,
		ThresholdMax:    5,
		TextProbability: 0.7,
		Rand:            agent.NewRand(*seed),
	}
	responder := agent.New(st, opts, func(ev agent.Event) {
		if ev.Message == nil {
			return
		}
		mu.Lock()
		replies++
		mu.Unlock()
	})
	defer responder.Close()

	step := opts.Debounce + opts.ThinkDelay + 50*time.Millisecond
	for i := 0; i < *messages; i++ {
		text := fmt.Sprintf("user message %d", i+1)
		if _, err := st.SendMessage(chat.ID, text, models.KindText, models.SenderUser, nil, 0); err != nil {
			log.Fatalf("sending message %d: %v", i+1, err)
		}
		responder.OnUserMessageSent(chat.ID)
		time.Sleep(step)
	}

	msgs, err := st.ListMessages(chat.ID)
	if err != nil {
		log.Fatalf("listing messages: %v", err)
	}

	mu.Lock()
	result := runResult{Seed: *seed, Messages: *messages, Replies: replies}
	mu.Unlock()
	for _, m := range msgs {
		entry := transcriptEntry{
			Sender:    string(m.Sender),
			Kind:      string(m.Kind),
			Text:      m.Text,
			Timestamp: m.Timestamp,
		}
		if att, err := m.File(); err == nil && att != nil {
			entry.Path = att.Path
		}
		result.Transcript = append(result.Transcript, entry)
		fmt.Printf("%-5s %-4s %s%s\n", m.Sender, m.Kind, m.Text, entry.Path)
	}
	fmt.Printf("\n%d user messages, %d agent replies\n", *messages, result.Replies)

	if *out != "" {
		raw, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Fatalf("encoding transcript: %v", err)
		}
		if err := os.WriteFile(*out, raw, 0644); err != nil {
			log.Fatalf("writing %s: %v", *out, err)
		}
		fmt.Printf("transcript written to %s\n", *out)
	}
}
