package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
	"github.com/hemanyagillurkar28-lab/Krishi/internal/protocol"
)

// krishi-say publishes a text utterance on the bus so a voice session can
// be driven without a microphone.
func main() {
	var (
		server   string
		language string
	)
	flag.StringVar(&server, "server", nats.DefaultURL, "NATS server URL")
	flag.StringVar(&language, "language", string(locale.Hindi), "Utterance language tag")
	flag.Parse()

	text := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if text == "" {
		fmt.Fprintln(os.Stderr, "usage: krishi-say [-server URL] [-language TAG] <utterance>")
		os.Exit(2)
	}
	if _, err := locale.Parse(language); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := publish(server, text, language); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("utterance published")
}

func publish(server, text, language string) error {
	conn, err := nats.Connect(server, nats.Name("krishi-say"), nats.Timeout(5*time.Second))
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer conn.Close()

	data, err := json.Marshal(protocol.Utterance{
		Text:      text,
		Language:  language,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := conn.Publish(protocol.SubjectUtteranceText, data); err != nil {
		return fmt.Errorf("publish utterance: %w", err)
	}
	return conn.Flush()
}
