// Package climate talks to the underlying HVAC unit over MQTT. It relays
// desired modes to the device's command topic and mirrors the mode and
// availability the device reports. Device protocol details live behind the
// MQTT bridge on the other side; this client never sees them.
package climate

import (
	"fmt"
	"log"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/victorjacobs/go-smartcomfort/comfort"
	"github.com/victorjacobs/go-smartcomfort/config"
)

type Client struct {
	cfg *config.Climate

	mu        sync.Mutex
	mqtt      mqtt.Client
	reported  string
	available bool
	onChange  func()
}

func NewClient(cfg *config.Climate, onChange func()) *Client {
	return &Client{
		cfg: cfg,
		// Without an availability topic there is nothing to go by, assume up.
		available: cfg.AvailabilityTopic == "",
		onChange:  onChange,
	}
}

// Subscribe sets up the state and availability subscriptions and keeps the
// connection for publishing commands. Call from the MQTT OnConnect handler
// so the subscriptions survive reconnects.
func (c *Client) Subscribe(client mqtt.Client) {
	c.mu.Lock()
	c.mqtt = client
	c.mu.Unlock()

	if t := client.Subscribe(c.cfg.ModeStateTopic, 0, func(client mqtt.Client, msg mqtt.Message) {
		c.mu.Lock()
		c.reported = string(msg.Payload())
		c.mu.Unlock()

		c.notify()
	}); t.Wait() && t.Error() != nil {
		log.Printf("MQTT receive error: %v", t.Error())
	}

	if c.cfg.AvailabilityTopic == "" {
		return
	}

	if t := client.Subscribe(c.cfg.AvailabilityTopic, 0, func(client mqtt.Client, msg mqtt.Message) {
		c.mu.Lock()
		c.available = string(msg.Payload()) == "online"
		c.mu.Unlock()

		c.notify()
	}); t.Wait() && t.Error() != nil {
		log.Printf("MQTT receive error: %v", t.Error())
	}
}

func (c *Client) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

// ApplyMode publishes the mode to the device's command topic. The publish
// is fire-and-forget; whatever the device ends up doing comes back through
// the state topic.
func (c *Client) ApplyMode(mode comfort.Mode) error {
	if !c.supports(mode) {
		return fmt.Errorf("device %v does not support mode %v", c.cfg.EntityID, mode)
	}

	c.mu.Lock()
	client := c.mqtt
	c.mu.Unlock()
	if client == nil {
		return fmt.Errorf("not connected to MQTT yet")
	}

	if t := client.Publish(c.cfg.ModeCommandTopic, 0, false, string(mode)); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	log.Printf("Commanded %v to %v", c.cfg.EntityID, mode)
	return nil
}

func (c *Client) supports(mode comfort.Mode) bool {
	for _, m := range c.SupportedModes() {
		if m == mode {
			return true
		}
	}
	return false
}

func (c *Client) SupportedModes() []comfort.Mode {
	modes := make([]comfort.Mode, 0, len(c.cfg.Modes))
	for _, m := range c.cfg.Modes {
		modes = append(modes, comfort.Mode(m))
	}
	return modes
}

func (c *Client) ReportedMode() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reported
}

func (c *Client) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.available
}

func (c *Client) EntityID() string {
	return c.cfg.EntityID
}
