package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// PubSubListener receives Gmail push notifications for the OAuth email
// variant and triggers an email engine run. The dedup ledger makes the
// triggered scans idempotent, so the listener only debounces to avoid
// hammering the mailbox on notification bursts.
type PubSubListener struct {
	client   *pubsub.Client
	engine   Engine
	subName  string
	topic    string
	debounce time.Duration

	mu      sync.Mutex
	lastRun time.Time
}

func NewPubSubListener(projectID, topicName, credentialsFile string, engine Engine) (*PubSubListener, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &PubSubListener{
		client:   client,
		engine:   engine,
		topic:    topicName,
		subName:  topicName + "-sub", // Convention: topic-sub
		debounce: 30 * time.Second,
	}, nil
}

func (l *PubSubListener) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting listener with topic: %s, subscription: %s", l.topic, l.subName)

	sub := l.client.Subscription(l.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := l.client.Topic(l.topic)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", l.topic)
			return
		}

		sub, err = l.client.CreateSubscription(ctx, l.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", l.subName)
	}

	log.Printf("[PubSub] Listening for messages on subscription: %s", l.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		l.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (l *PubSubListener) handleMessage(ctx context.Context, msg *pubsub.Message) {
	log.Printf("[PubSub] Received mailbox notification: %s", string(msg.Data))

	l.mu.Lock()
	if time.Since(l.lastRun) < l.debounce {
		l.mu.Unlock()
		log.Println("[PubSub] Scan ran recently, skipping")
		return
	}
	l.lastRun = time.Now()
	l.mu.Unlock()

	result := l.engine.Run(ctx)
	if !result.Success {
		log.Printf("[PubSub] Triggered scan failed: %s", result.Message)
		return
	}
	log.Printf("[PubSub] Triggered scan: %s", result.Message)
}
