package roborock

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/shimmeringbee/logwrap"
	"github.com/tidwall/gjson"

	"github.com/joshp123/gohome-s5/internal/config"
)

const defaultCommandTimeout = config.DefaultCommandTimeout

type mqttClient struct {
	client mqtt.Client
	mu     sync.Mutex
	subs   map[string]map[int]func([]byte)
	nextID int
}

type mqttConfig struct {
	broker   string
	username string
	password string
	clientID string
}

func newMQTTClient(cfg mqttConfig) (*mqttClient, error) {
	parsed, err := url.Parse(cfg.broker)
	if err != nil {
		return nil, fmt.Errorf("parse mqtt broker: %w", err)
	}
	opts := mqtt.NewClientOptions()
	if parsed.Scheme == "ssl" || parsed.Scheme == "tls" || parsed.Scheme == "mqtts" {
		opts.SetTLSConfig(&tls.Config{ServerName: parsed.Hostname()})
	}
	opts.AddBroker(cfg.broker)
	opts.SetUsername(cfg.username)
	opts.SetPassword(cfg.password)
	opts.SetClientID(cfg.clientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(10 * time.Second)

	mc := &mqttClient{subs: make(map[string]map[int]func([]byte))}
	opts.SetDefaultPublishHandler(mc.dispatch)
	opts.OnConnect = func(_ mqtt.Client) {
		mc.resubscribeAll()
	}
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	mc.client = client
	return mc, nil
}

func (c *mqttClient) subscribe(topic string, cb func([]byte)) (func(), error) {
	c.mu.Lock()
	if c.subs[topic] == nil {
		c.subs[topic] = make(map[int]func([]byte))
	}
	id := c.nextID
	c.nextID++
	c.subs[topic][id] = cb
	needSubscribe := len(c.subs[topic]) == 1
	c.mu.Unlock()

	if needSubscribe {
		if token := c.client.Subscribe(topic, 1, nil); token.Wait() && token.Error() != nil {
			return nil, token.Error()
		}
	}

	return func() {
		c.mu.Lock()
		callbacks := c.subs[topic]
		if callbacks == nil {
			c.mu.Unlock()
			return
		}
		delete(callbacks, id)
		shouldUnsub := len(callbacks) == 0
		if shouldUnsub {
			delete(c.subs, topic)
		}
		c.mu.Unlock()
		if shouldUnsub {
			_ = c.client.Unsubscribe(topic).Wait()
		}
	}, nil
}

func (c *mqttClient) publish(topic string, payload []byte) error {
	if token := c.client.Publish(topic, 1, false, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

func (c *mqttClient) dispatch(_ mqtt.Client, msg mqtt.Message) {
	c.mu.Lock()
	callbacks := c.subs[msg.Topic()]
	list := make([]func([]byte), 0, len(callbacks))
	for _, cb := range callbacks {
		list = append(list, cb)
	}
	c.mu.Unlock()
	for _, cb := range list {
		cb(msg.Payload())
	}
}

func (c *mqttClient) resubscribeAll() {
	c.mu.Lock()
	topics := make([]string, 0, len(c.subs))
	for topic := range c.subs {
		topics = append(topics, topic)
	}
	c.mu.Unlock()
	for _, topic := range topics {
		_ = c.client.Subscribe(topic, 1, nil).Wait()
	}
}

func (c *mqttClient) close() {
	c.client.Disconnect(250)
}

type publisher interface {
	publish(topic string, payload []byte) error
}

// MQTTChannel is a CommandChannel that exchanges JSON-RPC messages with the
// device bridge over a command topic and a reply topic.
type MQTTChannel struct {
	session      publisher
	commandTopic string
	timeout      time.Duration
	logger       logwrap.Logger

	nextID  atomic.Int64
	mu      sync.Mutex
	pending map[int]chan rpcResponse

	closeFn func()
}

// DialMQTT connects to the broker and subscribes to the reply topic.
func DialMQTT(cfg MQTTConfig, logger logwrap.Logger) (*MQTTChannel, error) {
	if cfg.CommandTopic == "" || cfg.ReplyTopic == "" {
		return nil, errors.New("mqtt command and reply topics are required")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "gohome-s5-" + uuid.NewString()
	}
	session, err := newMQTTClient(mqttConfig{
		broker:   cfg.Broker,
		username: cfg.Username,
		password: cfg.Password,
		clientID: clientID,
	})
	if err != nil {
		return nil, fmt.Errorf("connect mqtt %s: %w", cfg.Broker, err)
	}
	ch := newMQTTChannel(session, cfg.CommandTopic, cfg.CommandTimeout, logger)
	unsub, err := session.subscribe(cfg.ReplyTopic, ch.handleReply)
	if err != nil {
		session.close()
		return nil, fmt.Errorf("subscribe %s: %w", cfg.ReplyTopic, err)
	}
	ch.closeFn = func() {
		unsub()
		session.close()
	}
	logger.LogInfo(context.Background(), "Connected command channel.",
		logwrap.Datum("broker", cfg.Broker),
		logwrap.Datum("clientID", clientID))
	return ch, nil
}

func newMQTTChannel(session publisher, commandTopic string, timeout time.Duration, logger logwrap.Logger) *MQTTChannel {
	if timeout <= 0 {
		timeout = defaultCommandTimeout
	}
	ch := &MQTTChannel{
		session:      session,
		commandTopic: commandTopic,
		timeout:      timeout,
		logger:       logger,
		pending:      make(map[int]chan rpcResponse),
		closeFn:      func() {},
	}
	ch.nextID.Store(int64(nextInt(10000, 32767)))
	return ch
}

func (c *MQTTChannel) SendCommand(ctx context.Context, method string, params any, opts CommandOptions) (any, error) {
	if params == nil {
		params = []any{}
	}
	timeout := c.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	rpcCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := requestMessage{ID: int(c.nextID.Add(1)), Method: method, Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", method, err)
	}

	respCh := make(chan rpcResponse, 1)
	c.mu.Lock()
	c.pending[req.ID] = respCh
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	if err := c.session.publish(c.commandTopic, payload); err != nil {
		return nil, err
	}

	select {
	case <-rpcCtx.Done():
		return nil, rpcCtx.Err()
	case resp := <-respCh:
		if err := resp.deviceError(); err != nil {
			return nil, err
		}
		return resp.Result, nil
	}
}

func (c *MQTTChannel) handleReply(payload []byte) {
	id := gjson.GetBytes(payload, "id")
	if !id.Exists() {
		return
	}
	c.mu.Lock()
	respCh := c.pending[int(id.Int())]
	c.mu.Unlock()
	if respCh == nil {
		return
	}
	resp, err := decodeResponse(payload)
	if err != nil {
		c.logger.LogDebug(context.Background(), "Dropping malformed reply.", logwrap.Err(err))
		return
	}
	select {
	case respCh <- resp:
	default:
	}
}

// Close unsubscribes and disconnects from the broker.
func (c *MQTTChannel) Close() {
	c.closeFn()
}
