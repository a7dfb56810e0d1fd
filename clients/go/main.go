// Command parlor-cli is a minimal terminal client for the Parlor relay.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/parlorchat/parlor/clients/go/parlor"
)

func main() {
	server := flag.String("server", "http://localhost:5000", "relay base URL")
	username := flag.String("username", "", "display name")
	room := flag.String("room", "", "room to join (relay default when empty)")
	flag.Parse()

	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: parlor-cli -username NAME [-room ROOM] [-server URL]")
		os.Exit(2)
	}

	client, err := parlor.Dial(*server)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect:", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.Join(*username, *room); err != nil {
		fmt.Fprintln(os.Stderr, "join:", err)
		os.Exit(1)
	}

	go printEvents(client)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case strings.HasPrefix(line, "/room "):
			err = client.SwitchRoom(strings.TrimSpace(strings.TrimPrefix(line, "/room ")))
		case strings.HasPrefix(line, "/pm "):
			parts := strings.SplitN(strings.TrimPrefix(line, "/pm "), " ", 2)
			if len(parts) != 2 {
				fmt.Fprintln(os.Stderr, "usage: /pm CONNECTION_ID MESSAGE")
				continue
			}
			err = client.SendPrivate(parts[0], parts[1])
		default:
			err = client.SendMessage(line, "")
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "send:", err)
			return
		}
	}
}

func printEvents(client *parlor.Client) {
	for {
		event, err := client.ReadEvent()
		if err != nil {
			fmt.Fprintln(os.Stderr, "connection closed:", err)
			os.Exit(0)
		}

		switch event.Event {
		case parlor.EventReceiveMessage, parlor.EventPrivateMessage:
			var msg parlor.Message
			if event.Decode(&msg) == nil {
				prefix := msg.Room
				if msg.IsPrivate {
					prefix = "pm"
				}
				fmt.Printf("[%s] %s: %s\n", prefix, msg.Sender, msg.Body)
			}
		case parlor.EventUserJoined:
			var user parlor.User
			if event.Decode(&user) == nil {
				fmt.Printf("* %s joined %s\n", user.Username, user.Room)
			}
		case parlor.EventUserLeft:
			var user parlor.User
			if event.Decode(&user) == nil {
				fmt.Printf("* %s left %s\n", user.Username, user.Room)
			}
		case parlor.EventRoomJoined:
			var snapshot parlor.RoomSnapshot
			if event.Decode(&snapshot) == nil {
				fmt.Printf("* now in %s (%d users, %d recent messages)\n",
					snapshot.Room, len(snapshot.Users), len(snapshot.Messages))
			}
		}
	}
}
