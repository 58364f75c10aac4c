package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/Clark-Hu/movies-service/internal/domain"
)

type fixtures struct {
	MovieInfos map[string]domain.MovieInfo `json:"movieInfos"`
	Reviews    []domain.Review             `json:"reviews"`
}

func main() {
	var (
		port       = flag.String("port", "9099", "port to listen on")
		data       = flag.String("data", "mock-movies.json", "path to mock data file")
		failStatus = flag.Int("fail-status", 0, "status returned by injected failures (e.g. 500)")
		failTimes  = flag.Int64("fail-times", 0, "number of initial movie info requests that fail with -fail-status")
		logReqs    = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var payload fixtures
	if err := json.Unmarshal(file, &payload); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	var served atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/movieinfos/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if *logReqs {
			log.Printf("movieinfo %s", id)
		}
		if *failStatus != 0 && served.Add(1) <= *failTimes {
			http.Error(w, "MovieInfo Service Unavailable", *failStatus)
			return
		}
		entry, ok := payload.MovieInfos[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, entry)
	})
	mux.HandleFunc("GET /v1/reviews", func(w http.ResponseWriter, r *http.Request) {
		movieInfoID := r.URL.Query().Get("movieInfoId")
		if *logReqs {
			log.Printf("reviews movieInfoId=%s", movieInfoID)
		}
		matched := make([]domain.Review, 0)
		for _, review := range payload.Reviews {
			if movieInfoID == "" || review.MovieInfoID == movieInfoID {
				matched = append(matched, review)
			}
		}
		if len(matched) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, matched)
	})

	addr := ":" + *port
	log.Printf("mock upstreams listening on %s (%d movie infos, %d reviews)", addr, len(payload.MovieInfos), len(payload.Reviews))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
