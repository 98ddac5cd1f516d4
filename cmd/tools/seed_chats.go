package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"log"
	"time"
	"whatsapp-clone/client"
	"whatsapp-clone/errors"

	"github.com/google/uuid"
	"github.com/gookit/color"
)

// Seeds a running server with users chatting in a ring: each user opens a chat with the next one.
func main() {
	addr := flag.String("addr", "localhost:8080", "gRPC server address")
	users := flag.Int("users", 5, "number of users to register")
	messages := flag.Int("messages", 20, "messages sent in each chat")
	password := flag.String("password", "SeedPassword123!", "password of every seeded user")
	flag.Parse()

	if *users < 2 {
		log.Fatal("At least two users are needed to chat")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	run := uuid.NewString()[:8]
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(fmt.Sprintf("  Seeding run %s on %s  ", run, *addr)))

	// 1. Register the users
	clients := make([]*client.Client, *users)
	for i := range clients {
		c, err := client.Dial(*addr)
		if err != nil {
			log.Fatal(err)
		}
		defer c.Close()
		email := fmt.Sprintf("user%d-%s@seed.local", i, run)
		if err := c.Register(ctx, email, *password, fmt.Sprintf("User %d", i)); err != nil {
			log.Fatalf("Register %s: %v", email, err)
		}
		clients[i] = c
	}
	fmt.Printf("Registered %d users\n", *users)

	// 2. Open the chats and talk
	start := time.Now()
	sent := 0
	for i, c := range clients {
		next := clients[(i+1)%len(clients)]
		created, err := c.CreateChat(ctx, next.Email())
		var rejection *errors.RemoteRejection
		switch {
		case stderrors.As(err, &rejection) && rejection.ChatID != "":
			// With two users the ring closes on the chat already opened
			created.ID = rejection.ChatID
		case err != nil:
			log.Fatalf("CreateChat %s -> %s: %v", c.Email(), next.Email(), err)
		}

		for m := 0; m < *messages; m++ {
			author := c
			if m%2 == 1 {
				author = next
			}
			content := fmt.Sprintf("message %d from %s", m, author.Email())
			if err := author.SendMessage(ctx, created.ID, content, ""); err != nil {
				log.Fatalf("SendMessage in %s: %v", created.ID, err)
			}
			sent++
		}
	}

	fmt.Println(color.FgGreen.Render(fmt.Sprintf("Sent %d messages in %v", sent, time.Since(start))))
}
