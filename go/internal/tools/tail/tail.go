package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/mcdev12/auctionroom/go/internal/auction/outbox"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// tail prints auction events recorded on the JetStream stream
func main() {
	config := outbox.DefaultJetStreamConsumerConfig()
	var session, prefix string
	flag.StringVar(&config.URL, "nats", nats.DefaultURL, "NATS server URL")
	flag.StringVar(&config.StreamName, "stream", config.StreamName, "JetStream stream name")
	flag.StringVar(&config.ConsumerName, "consumer", config.ConsumerName, "durable consumer name")
	flag.StringVar(&prefix, "prefix", outbox.DefaultJetStreamConfig().SubjectPrefix, "subject prefix")
	flag.StringVar(&session, "session", "", "only show events for this session id")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.SubjectFilter = outbox.SessionSubjectFilter(prefix, session)
	if session != "" {
		config.ConsumerName = config.ConsumerName + "-" + session
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	consumer, err := outbox.NewEventConsumer(ctx, config, func(_ context.Context, env outbox.Envelope) error {
		fmt.Printf("%s  %-36s  #%-4d %-16s %s\n",
			env.Timestamp.Format("15:04:05.000"), env.SessionID, env.Sequence, env.EventType, env.Payload)
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Str("stream", config.StreamName).Msg("failed to create consumer")
	}
	defer consumer.Stop()

	if err := consumer.Start(ctx); err != nil {
		log.Error().Err(err).Str("session_id", session).Msg("consumer stopped")
	}
}
