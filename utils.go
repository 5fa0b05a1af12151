package main

import (
	"log"
	"time"
)

// loopSafely runs f in a loop and restarts the loop after a panic, so a
// transient MQTT or serial failure never takes the whole bridge down.
func loopSafely(f func()) {
	defer func() {
		if v := recover(); v != nil {
			log.Printf("Panic: %v, restarting", v)
			time.Sleep(time.Second)
			go loopSafely(f)
		}
	}()

	for {
		f()
	}
}
