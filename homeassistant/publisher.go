package homeassistant

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/victorjacobs/go-smartcomfort/controller"
)

type sensorDefinition struct {
	name       string
	class      string
	unit       string
	get        func(s controller.Snapshot) interface{}
	stateTopic string
}

var sensorDefinitions = [...]*sensorDefinition{
	{
		name:  "Smart Comfort Dew Point",
		class: "temperature",
		unit:  "°F",
		get:   func(s controller.Snapshot) interface{} { return round1(s.DewPoint) },
	},
	{
		name:  "Smart Comfort Feels Like",
		class: "temperature",
		unit:  "°F",
		get:   func(s controller.Snapshot) interface{} { return round1(s.FeelsLike) },
	},
	{
		name:  "Smart Comfort Feels Like Difference",
		class: "temperature",
		unit:  "°F",
		get:   func(s controller.Snapshot) interface{} { return round1(s.FeelsLikeDifference) },
	},
	{
		name: "Smart Comfort Status",
		get:  func(s controller.Snapshot) interface{} { return s.ComfortZone },
	},
}

func round1(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// RegisterSensors announces the derived comfort sensors.
func (h *Client) RegisterSensors() error {
	for _, sensorConfig := range sensorDefinitions {
		if stateTopic, err := h.RegisterSensor(sensorConfig.name, sensorConfig.class, sensorConfig.unit); err != nil {
			return err
		} else {
			log.Printf("Registered sensor %v", sensorConfig.name)
			sensorConfig.stateTopic = stateTopic
		}
	}

	return nil
}

// PublishSnapshot pushes one cycle's output to the sensor state topics and
// the climate entity's state and attribute topics. Hook it up with
// Controller.OnSnapshot.
func (h *Client) PublishSnapshot(snapshot controller.Snapshot) {
	for _, sensorConfig := range sensorDefinitions {
		if sensorConfig.stateTopic == "" {
			continue
		}

		value := fmt.Sprintf("%v", sensorConfig.get(snapshot))
		if t := h.mqtt.Publish(sensorConfig.stateTopic, 0, true, value); t.Wait() && t.Error() != nil {
			log.Printf("MQTT publishing failed: %v", t.Error())
			continue
		}
	}

	states := map[string]string{
		modeStateTopic:          string(snapshot.DesiredMode),
		targetStateTopic:        round1(snapshot.TargetFeelsLike),
		currentTemperatureTopic: round1(snapshot.FeelsLike),
	}
	for topic, value := range states {
		if t := h.mqtt.Publish(topic, 0, true, value); t.Wait() && t.Error() != nil {
			log.Printf("MQTT publishing failed: %v", t.Error())
		}
	}

	if attributes, err := json.Marshal(snapshot); err != nil {
		log.Printf("error marshaling: %v", err)
	} else if t := h.mqtt.Publish(attributesTopic, 0, true, attributes); t.Wait() && t.Error() != nil {
		log.Printf("MQTT publishing failed: %v", t.Error())
	}
}

// SubscribeToTargetCommands wires the climate entity's set-temperature
// action to the controller. Call from the MQTT OnConnect handler.
func (h *Client) SubscribeToTargetCommands(client mqtt.Client, setTarget func(float64)) {
	if t := client.Subscribe(TargetCommandTopic, 0, func(client mqtt.Client, msg mqtt.Message) {
		value, err := strconv.ParseFloat(string(msg.Payload()), 64)
		if err != nil {
			log.Printf("Ignoring non-numeric target: %q", msg.Payload())
			return
		}

		setTarget(value)
	}); t.Wait() && t.Error() != nil {
		log.Printf("MQTT receive error: %v", t.Error())
	}
}
