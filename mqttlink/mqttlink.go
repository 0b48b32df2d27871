// Package mqttlink carries sway transactions and callbacks over MQTT.
//
// The UI side publishes each committed transaction to <prefix>/tx with a
// Transport and receives its callbacks on <prefix>/cb/<owner> through an
// Inbox. The render side runs a Server, which applies incoming transactions
// to a sway.RenderService and routes callbacks back to their owners.
package mqttlink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/phanxgames/sway"
)

// ErrTimeout is returned when the broker does not acknowledge in time.
var ErrTimeout = errors.New("mqttlink: timed out")

// Client is the part of mqtt.Client the link uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
	Unsubscribe(topics ...string) mqtt.Token
}

// TransactionTopic is the topic clients publish transactions to.
func TransactionTopic(prefix string) string { return prefix + "/tx" }

// CallbackTopic is the topic the render side publishes owner's callbacks to.
func CallbackTopic(prefix string, owner uint32) string {
	return fmt.Sprintf("%s/cb/%d", prefix, owner)
}

func logger() *slog.Logger { return sway.Logger().With("adapter", "mqttlink") }

// Connect dials the broker described by cfg.
func Connect(cfg sway.MQTTConfig) (mqtt.Client, error) {
	options := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true)
	client := mqtt.NewClient(options)
	if err := wait(context.Background(), client.Connect(), cfg.Timeout); err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.URL, err)
	}
	return client, nil
}

// wait blocks until token completes, the timeout passes or ctx's deadline
// is reached, whichever comes first.
func wait(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !token.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return token.Error()
}

// --- UI side ---

// Transport publishes transactions. It implements sway.Transport.
type Transport struct {
	client  Client
	topic   string
	qos     byte
	timeout time.Duration
}

// NewTransport returns a sway.Transport publishing to the transaction topic
// under cfg.Prefix.
func NewTransport(client Client, cfg sway.MQTTConfig) *Transport {
	return &Transport{client: client, topic: TransactionTopic(cfg.Prefix), qos: cfg.QoS, timeout: cfg.Timeout}
}

// Send publishes tx and waits for the broker to accept it.
func (t *Transport) Send(ctx context.Context, tx *sway.Transaction) error {
	data, err := sway.EncodeTransaction(tx)
	if err != nil {
		return err
	}
	if err := wait(ctx, t.client.Publish(t.topic, t.qos, false, data), t.timeout); err != nil {
		return fmt.Errorf("publish %s: %w", t.topic, err)
	}
	return nil
}

// Inbox receives the callbacks of one owner. Batches arrive on the MQTT
// client's goroutine and wait in a buffer until Drain hands them to the
// goroutine that owns the sway.Client.
type Inbox struct {
	client  Client
	topic   string
	batches chan []sway.Command
}

// NewInbox subscribes to the callback topic of owner. size bounds the
// number of undrained batches; further batches are dropped with a warning.
func NewInbox(client Client, cfg sway.MQTTConfig, owner uint32, size int) (*Inbox, error) {
	if size <= 0 {
		size = 64
	}
	in := &Inbox{client: client, topic: CallbackTopic(cfg.Prefix, owner), batches: make(chan []sway.Command, size)}
	if err := wait(context.Background(), client.Subscribe(in.topic, cfg.QoS, in.handle), cfg.Timeout); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", in.topic, err)
	}
	return in, nil
}

func (in *Inbox) handle(_ mqtt.Client, msg mqtt.Message) {
	cmds, err := sway.DecodeCommands(msg.Payload())
	if err != nil {
		logger().Warn("bad callback batch", "topic", msg.Topic(), "err", err)
		return
	}
	select {
	case in.batches <- cmds:
	default:
		logger().Warn("callback batch dropped: inbox full", "topic", in.topic, "commands", len(cmds))
	}
}

// C returns the channel batches arrive on, for use in a select loop.
func (in *Inbox) C() <-chan []sway.Command { return in.batches }

// Drain hands every waiting batch to h and returns how many commands it
// delivered. It does not block.
func (in *Inbox) Drain(h sway.CallbackHandler) int {
	n := 0
	for {
		select {
		case cmds := <-in.batches:
			h.HandleCallbacks(cmds)
			n += len(cmds)
		default:
			return n
		}
	}
}

// Close unsubscribes.
func (in *Inbox) Close() error {
	return wait(context.Background(), in.client.Unsubscribe(in.topic), 0)
}

// --- Render side ---

// Server applies transactions published to the transaction topic and
// routes callbacks back. It implements sway.CallbackRouter.
type Server struct {
	client  Client
	service *sway.RenderService
	prefix  string
	qos     byte
	timeout time.Duration
}

// NewServer subscribes to the transaction topic and installs itself as the
// service's router.
func NewServer(client Client, service *sway.RenderService, cfg sway.MQTTConfig) (*Server, error) {
	s := &Server{client: client, service: service, prefix: cfg.Prefix, qos: cfg.QoS, timeout: cfg.Timeout}
	topic := TransactionTopic(cfg.Prefix)
	if err := wait(context.Background(), client.Subscribe(topic, cfg.QoS, s.handle), cfg.Timeout); err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	service.SetRouter(s)
	return s, nil
}

func (s *Server) handle(_ mqtt.Client, msg mqtt.Message) {
	tx, err := sway.DecodeTransaction(msg.Payload())
	if err != nil {
		logger().Warn("bad transaction", "topic", msg.Topic(), "err", err)
		return
	}
	if err := s.service.Apply(context.Background(), tx); err != nil {
		if errors.Is(err, sway.ErrDuplicateTransaction) {
			// QoS 1 redelivery.
			logger().Debug("duplicate transaction ignored", "tx", tx.ID, "owner", tx.Owner)
			return
		}
		logger().Error("apply transaction", "tx", tx.ID, "owner", tx.Owner, "err", err)
	}
}

// Route publishes cmds to the callback topic of owner.
func (s *Server) Route(ctx context.Context, owner uint32, cmds []sway.Command) error {
	data, err := sway.EncodeCommands(cmds)
	if err != nil {
		return err
	}
	topic := CallbackTopic(s.prefix, owner)
	if err := wait(ctx, s.client.Publish(topic, s.qos, false, data), s.timeout); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close unsubscribes from the transaction topic.
func (s *Server) Close() error {
	return wait(context.Background(), s.client.Unsubscribe(TransactionTopic(s.prefix)), s.timeout)
}
