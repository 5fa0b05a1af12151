package routes

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/victorjacobs/go-smartcomfort/controller"
)

// State serves the latest evaluation cycle's snapshot.
func State(c *controller.Controller) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		snapshot, ok := c.Snapshot()
		if !ok {
			http.Error(w, "no evaluation has completed yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if marshaled, err := json.Marshal(snapshot); err != nil {
			log.Printf("error marshaling: %v", err)
		} else {
			w.Write(marshaled)
		}
	}
}
