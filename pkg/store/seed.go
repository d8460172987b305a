package store

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"banter/models"
)

type seedMessage struct {
	text   string
	sender models.Sender
	ts     int64
}

type seedChat struct {
	title      string
	createdAt  int64
	lastSender models.Sender
	messages   []seedMessage
}

// Demo conversations inserted on first run. Timestamps are fixed so the
// chat list renders a stable, plausible history.
var seedChats = []seedChat{
	{
		title:      "Mumbai Flight Booking",
		createdAt:  1703520000000,
		lastSender: models.SenderUser,
		messages: []seedMessage{
			{"Hi! I need help booking a flight to Mumbai.", models.SenderUser, 1703520000000},
			{"Hello! I'd be happy to help you book a flight to Mumbai. When are you planning to travel?", models.SenderAgent, 1703520030000},
			{"Next Friday, December 29th.", models.SenderUser, 1703520090000},
			{"Great! And when would you like to return?", models.SenderAgent, 1703520120000},
			{"January 5th. Also, I prefer morning flights.", models.SenderUser, 1703520180000},
			{"Perfect! Let me search for morning flights. Could you share your departure city?", models.SenderAgent, 1703520210000},
			{"I'll be flying from Delhi.", models.SenderUser, 1703520300000},
			{"Thanks for sharing! Let me find the best IndiGo options for you.", models.SenderAgent, 1703520330000},
			{"I found a few morning flights. The 6:30 AM and 9:15 AM departures look great.", models.SenderAgent, 1703520420000},
			{"The second option looks perfect! How do I proceed?", models.SenderUser, 1703520480000},
		},
	},
	{
		title:      "Hotel Reservation Help",
		createdAt:  1703440000000,
		lastSender: models.SenderAgent,
		messages: []seedMessage{
			{"I need a hotel near Juhu Beach for New Year's Eve.", models.SenderUser, 1703440000000},
			{"Sure! How many nights are you planning to stay?", models.SenderAgent, 1703440060000},
			{"3 nights, checking in on the 30th.", models.SenderUser, 1703441000000},
			{"Got it. Any preferences for amenities? Pool, breakfast included?", models.SenderAgent, 1703442000000},
			{"Pool is a must, and breakfast would be nice.", models.SenderUser, 1703443000000},
			{"What's your budget range per night?", models.SenderAgent, 1703444000000},
			{"Around 5000-8000 INR per night.", models.SenderUser, 1703445000000},
			{"I've found 5 hotels in that area. Here's a comparison.", models.SenderAgent, 1703450000000},
		},
	},
	{
		title:      "Restaurant Recommendations",
		createdAt:  1703370000000,
		lastSender: models.SenderUser,
		messages: []seedMessage{
			{"Can you suggest some good restaurants in Bandra?", models.SenderUser, 1703370000000},
			{"Of course! What type of cuisine are you in the mood for?", models.SenderAgent, 1703371000000},
			{"Something Italian or maybe seafood.", models.SenderUser, 1703372000000},
			{"Great choices! I'd recommend Bastian for seafood and Americano for Italian.", models.SenderAgent, 1703373000000},
			{"Are they expensive?", models.SenderUser, 1703374000000},
			{"Bastian is around 2500-3500 for two. Americano is more moderate at 1200-1800.", models.SenderAgent, 1703375000000},
			{"Do they take reservations?", models.SenderUser, 1703376000000},
			{"Yes, both accept reservations. I'd recommend booking ahead for the holidays.", models.SenderAgent, 1703377000000},
			{"Thanks! I'll check them out.", models.SenderUser, 1703380000000},
		},
	},
}

// SeedIfEmpty populates the demo conversations when the store holds no
// chats. Idempotent: a non-empty store is left untouched.
func (s *Store) SeedIfEmpty() error {
	var count int64
	if err := s.db.Model(&models.Chat{}).Count(&count).Error; err != nil {
		return fmt.Errorf("counting chats before seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, sc := range seedChats {
			last := sc.messages[len(sc.messages)-1]
			chat := models.Chat{
				ID:                   uuid.NewString(),
				Title:                sc.title,
				LastMessagePreview:   last.text,
				LastMessageSender:    sc.lastSender,
				LastMessageTimestamp: last.ts,
				CreatedAt:            sc.createdAt,
				UpdatedAt:            last.ts,
			}
			if err := tx.Create(&chat).Error; err != nil {
				return err
			}
			for _, sm := range sc.messages {
				msg := models.Message{
					ID:        uuid.NewString(),
					ChatID:    chat.ID,
					Text:      sm.text,
					Kind:      models.KindText,
					Sender:    sm.sender,
					Timestamp: sm.ts,
				}
				if err := tx.Create(&msg).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("seeding demo data: %w", err)
	}
	s.invalidate()
	return nil
}
