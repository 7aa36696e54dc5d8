package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bilguunmgl/go-shop-orders/internal/config"
	kafkax "github.com/bilguunmgl/go-shop-orders/internal/kafka"
	"github.com/bilguunmgl/go-shop-orders/internal/orders"
	"github.com/bilguunmgl/go-shop-orders/internal/redisx"
	"github.com/bilguunmgl/go-shop-orders/internal/ws"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Hub
	hub := ws.NewHub()
	go hub.Run()

	relay := &ws.Relay{Hub: hub, Redis: rdb, Name: "pushgw"}

	// one consumer per event topic, all feeding the same hub
	group := getenv("PUSHGW_GROUP", "push-gateway")
	workers := mustAtoi(os.Getenv("PUSHGW_WORKERS"), "4")
	for _, topic := range orders.Topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func(topic string) {
			log.Printf("pushgw consumer started: group=%s topic=%s workers=%d", group, topic, workers)
			if err := cons.Start(ctx, relay.Handle); err != nil {
				log.Printf("consumer exit (%s): %v", topic, err)
				cancel()
			}
		}(topic)
	}

	// WebSocket endpoint
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	srv := &http.Server{Addr: cfg.WSAddr, Handler: mux}

	go func() {
		log.Printf("push gateway listening at %s", cfg.WSAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down push gateway...")
	cancel()

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	time.Sleep(500 * time.Millisecond)
}
