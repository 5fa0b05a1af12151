package main

import (
	"context"
	"log"
	"net/http"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/julienschmidt/httprouter"
	"github.com/victorjacobs/go-smartcomfort/climate"
	"github.com/victorjacobs/go-smartcomfort/comfort"
	"github.com/victorjacobs/go-smartcomfort/config"
	"github.com/victorjacobs/go-smartcomfort/controller"
	"github.com/victorjacobs/go-smartcomfort/homeassistant"
	"github.com/victorjacobs/go-smartcomfort/routes"
	"github.com/victorjacobs/go-smartcomfort/sensor"
)

func main() {
	cfg, err := config.LoadConfiguration("smartcomfort.json")
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
		return
	}

	var ctrl *controller.Controller
	trigger := func() {
		if ctrl != nil {
			ctrl.Trigger()
		}
	}

	var source controller.ReadingSource
	var mqttSource *sensor.MQTTSource
	var serialSource *sensor.SerialSource
	if cfg.Sensor.SerialPort != "" {
		serialSource = sensor.NewSerialSource(cfg.Sensor.SerialPort, trigger)
		source = serialSource
	} else {
		mqttSource = sensor.NewMQTTSource(cfg.Sensor.TemperatureTopic, cfg.Sensor.HumidityTopic, trigger)
		source = mqttSource
	}

	climateClient := climate.NewClient(&cfg.Climate, trigger)

	targets := comfort.Targets{
		FeelsLike: cfg.Targets.FeelsLike,
		Humidity:  cfg.Targets.Humidity,
	}

	ctrl, err = controller.New(source, climateClient, controller.LogSink{}, targets, comfort.EngineOptions{})
	if err != nil {
		log.Fatalf("Error setting up controller: %v", err)
		return
	}

	mqttOpts := cfg.Mqtt.ClientOptions()
	// Configure MQTT subscriptions in the ConnectHandler to make sure they are set up after reconnect
	mqttOpts.SetOnConnectHandler(func(client mqtt.Client) {
		if mqttSource != nil {
			mqttSource.Subscribe(client)
		}
		climateClient.Subscribe(client)

		homeassistant.NewClient(client).SubscribeToTargetCommands(client, ctrl.SetTargetFeelsLike)
	})

	mqttClient := mqtt.NewClient(mqttOpts)
	if t := mqttClient.Connect(); t.Wait() && t.Error() != nil {
		log.Printf("MQTT connection error: %v", t.Error())
		return
	}

	haClient := homeassistant.NewClient(mqttClient)
	if err := haClient.RegisterClimate(); err != nil {
		log.Fatalf("Error registering climate entity: %v", err)
		return
	}
	if err := haClient.RegisterSensors(); err != nil {
		log.Fatalf("Error registering sensors: %v", err)
		return
	}
	ctrl.OnSnapshot(haClient.PublishSnapshot)

	// Serial sensors push readings as lines arrive
	if serialSource != nil {
		go loopSafely(func() {
			if err := serialSource.Poll(); err != nil {
				log.Printf("Serial port error: %v", err)
				time.Sleep(5 * time.Second)
			}
		})
	}

	// Evaluation cycles: on triggers and once a minute regardless
	go loopSafely(func() {
		ctrl.Run(context.Background(), time.Minute)
	})

	// Start httprouter
	router := httprouter.New()
	router.GET("/state", routes.State(ctrl))

	go loopSafely(func() {
		http.ListenAndServe(":8080", router)
	})

	select {}
}
