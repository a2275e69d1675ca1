package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// ws_smoke logs in against a running server, subscribes to a fresh board and
// prints the notifications that follow a task being added.
func main() {
	base := flag.String("addr", "127.0.0.1:8080", "server host:port")
	login := flag.String("login", "testuser", "username or email")
	password := flag.String("password", "testpass", "password")
	flag.Parse()

	httpBase := "http://" + *base

	var auth struct {
		Token string `json:"token"`
	}
	postForm(httpBase+"/login", "", url.Values{"username": {*login}, "password": {*password}}, &auth)
	if auth.Token == "" {
		log.Fatal("login returned no token")
	}

	var created struct {
		Board struct {
			ID   int64  `json:"id"`
			Code string `json:"board_code"`
		} `json:"board"`
	}
	postForm(httpBase+"/add_board", auth.Token, url.Values{"name": {"smoke " + time.Now().Format(time.Kitchen)}}, &created)
	log.Printf("board id=%d code=%s", created.Board.ID, created.Board.Code)

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", *base, auth.Token), nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]any{"type": "subscribe", "board_id": created.Board.ID}); err != nil {
		log.Fatalf("subscribe: %v", err)
	}
	waitFor(conn, "subscribed", 2*time.Second)

	postForm(fmt.Sprintf("%s/add_task/%d", httpBase, created.Board.ID), auth.Token, url.Values{"name": {"smoke task"}}, nil)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		log.Printf("got: %s", msg)
	}

	log.Println("smoke test finished")
}

func postForm(target, token string, form url.Values, out any) {
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		log.Fatalf("request %s: %v", target, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("post %s: %v", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Fatalf("post %s: status %d", target, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Fatalf("decode %s: %v", target, err)
		}
	}
}

func waitFor(conn *websocket.Conn, kind string, within time.Duration) {
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		var obj map[string]any
		_ = json.Unmarshal(msg, &obj)
		if t, ok := obj["type"].(string); ok && t == kind {
			return
		}
	}
	log.Fatalf("no %q message within %s", kind, within)
}
