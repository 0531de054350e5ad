// Interactive probe client for manual smoke-testing the game server.
//
// Commands:
//
//	create <nickname> <4|6|8>
//	join <roomCode> <nickname>
//	start <roomCode> <playerId>
//	clues <roomCode> <playerId> <c1> <c2> <c3>
//	guess <roomCode> <playerId> <targetTeamId> <d1> <d2> <d3>
package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	msgTypeCreateRoom  uint16 = 102
	msgTypeJoinRoom    uint16 = 103
	msgTypeStartGame   uint16 = 201
	msgTypeSubmitClues uint16 = 203
	msgTypeSubmitGuess uint16 = 204
)

// send frames and sends a message to the game server.
func send(c *websocket.Conn, msgID uint16, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:4100", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			data := message[4:]
			log.Printf("<- RECV (ID: %d): %s", msgID, string(data))
		}
	}()

	log.Println("Client started. Type a command (create/join/start/clues/guess).")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var sendErr error
			switch fields[0] {
			case "create":
				if len(fields) != 3 {
					log.Println("usage: create <nickname> <4|6|8>")
					continue
				}
				count, _ := strconv.Atoi(fields[2])
				sendErr = send(c, msgTypeCreateRoom, map[string]interface{}{
					"nickname":          fields[1],
					"targetPlayerCount": count,
				})
			case "join":
				if len(fields) != 3 {
					log.Println("usage: join <roomCode> <nickname>")
					continue
				}
				sendErr = send(c, msgTypeJoinRoom, map[string]string{
					"roomCode": fields[1],
					"nickname": fields[2],
				})
			case "start":
				if len(fields) != 3 {
					log.Println("usage: start <roomCode> <playerId>")
					continue
				}
				sendErr = send(c, msgTypeStartGame, map[string]string{
					"roomCode": fields[1],
					"playerId": fields[2],
				})
			case "clues":
				if len(fields) != 6 {
					log.Println("usage: clues <roomCode> <playerId> <c1> <c2> <c3>")
					continue
				}
				sendErr = send(c, msgTypeSubmitClues, map[string]interface{}{
					"roomCode": fields[1],
					"playerId": fields[2],
					"clues":    [3]string{fields[3], fields[4], fields[5]},
				})
			case "guess":
				if len(fields) != 7 {
					log.Println("usage: guess <roomCode> <playerId> <targetTeamId> <d1> <d2> <d3>")
					continue
				}
				var guess [3]int
				for i := 0; i < 3; i++ {
					guess[i], _ = strconv.Atoi(fields[4+i])
				}
				sendErr = send(c, msgTypeSubmitGuess, map[string]interface{}{
					"roomCode":     fields[1],
					"playerId":     fields[2],
					"targetTeamId": fields[3],
					"guess":        guess,
				})
			default:
				log.Printf("Unknown command %q", fields[0])
				continue
			}

			if sendErr != nil {
				log.Println("Write error:", sendErr)
				return
			}
			log.Printf("-> SENT: %s", fields[0])
		}
	}
}
