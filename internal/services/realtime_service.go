package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"gladiadores/internal/repositories"
)

const (
	ChannelCommunications = "rt:communications"
	ChannelProvinces      = "rt:provinces"

	EventCommunicationCreated = "communication.created"
	EventProvinceUpdated      = "province.updated"
	EventCIDPUnlocked         = "province.cidp_unlocked"
	EventLevelChanged         = "passport.level_changed"
	EventPointsChanged        = "passport.points_changed"
	EventReferralJoined       = "referral.joined"
	EventDonationReviewed     = "donation.reviewed"
	EventVoteReviewed         = "vote.reviewed"
)

func AccountChannel(accountID uuid.UUID) string {
	return "rt:account:" + accountID.String()
}

type RealtimeEvent struct {
	Type    string          `json:"type"`
	Channel string          `json:"channel"`
	At      int64           `json:"at"`
	Data    json.RawMessage `json:"data"`
}

type RealtimeHub interface {
	Publish(ctx context.Context, channel, eventType string, data interface{}) error
	// Subscribe streams events until cancel is called or ctx is done.
	Subscribe(ctx context.Context, channels ...string) (events <-chan RealtimeEvent, cancel func(), err error)
}

type redisHub struct {
	client *redis.Client
	log    *zap.Logger
	now    func() time.Time
}

func NewRedisHub(client *redis.Client, log *zap.Logger) RealtimeHub {
	return &redisHub{client: client, log: log, now: time.Now}
}

func (h *redisHub) Publish(ctx context.Context, channel, eventType string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", eventType, err)
	}
	payload, err := json.Marshal(RealtimeEvent{
		Type:    eventType,
		Channel: channel,
		At:      h.now().Unix(),
		Data:    raw,
	})
	if err != nil {
		return err
	}
	if err := h.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

func (h *redisHub) Subscribe(ctx context.Context, channels ...string) (<-chan RealtimeEvent, func(), error) {
	pubsub := h.client.Subscribe(ctx, channels...)
	// Wait for the subscription confirmation so no event published after return is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan RealtimeEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(out)
		in := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				var ev RealtimeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					h.log.Warn("dropping malformed realtime event", zap.String("channel", msg.Channel), zap.Error(err))
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}

// publishQuietly logs publish failures; realtime delivery never fails the request that caused it.
// Inside a transaction the event waits for the commit.
func publishQuietly(ctx context.Context, hub RealtimeHub, log *zap.Logger, channel, eventType string, data interface{}) {
	if hub == nil {
		return
	}
	repositories.AfterCommit(ctx, func() {
		if err := hub.Publish(ctx, channel, eventType, data); err != nil {
			log.Warn("realtime publish failed",
				zap.String("channel", channel),
				zap.String("event", eventType),
				zap.Error(err))
		}
	})
}
