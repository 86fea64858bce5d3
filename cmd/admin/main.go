package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"hoopbot/backend/internal/models"
	"hoopbot/backend/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
		)
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	storageSvc := storage.NewStorageService(db, nil) // No redis needed for admin CLI

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "rooms":
		if err := listRooms(storageSvc); err != nil {
			log.Fatalf("Error listing rooms: %v", err)
		}
	case "close":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin close <chat_id>")
			os.Exit(1)
		}
		chatID := os.Args[2]
		if err := closeRoom(storageSvc, chatID); err != nil {
			log.Fatalf("Error closing room: %v", err)
		}
		fmt.Printf("Room %s has been closed.\n", chatID)
	case "player":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin player <player_id>")
			os.Exit(1)
		}
		if err := showPlayer(storageSvc, os.Args[2]); err != nil {
			log.Fatalf("Error showing player: %v", err)
		}
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func listRooms(s storage.Storage) error {
	rooms, err := s.ListLiveRooms()
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		fmt.Println("No live rooms.")
		return nil
	}
	for _, room := range rooms {
		fmt.Printf("%s\t%s\towner=%s\tplayers=%d\n",
			room.ChatID, room.Status, room.OwnerID, len(room.MemberIDs))
	}
	return nil
}

// closeRoom force-finishes a stuck room. The Redis index self-heals on the
// next bot restart, so the CLI does not need a Redis connection.
func closeRoom(s storage.Storage, chatID string) error {
	room, err := s.GetRoomByChatID(chatID)
	if err != nil {
		return err
	}
	if room == nil {
		return fmt.Errorf("room %s not found", chatID)
	}
	room.Status = models.StatusFinished
	room.FinishedAt = time.Now()
	return s.SaveRoom(room)
}

func showPlayer(s storage.Storage, playerID string) error {
	player, err := s.GetPlayerByID(playerID)
	if err != nil {
		return err
	}
	if player == nil {
		return fmt.Errorf("player %s not found", playerID)
	}
	wins, err := s.CountWinsForPlayer(playerID)
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\twins=%d\n", player.ID, player.Name, wins)
	return nil
}
