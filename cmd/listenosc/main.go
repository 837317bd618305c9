package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/hypebeast/go-osc/osc"

	"github.com/Porma/nk2-volume-controller/devices/vmixer"
)

func main() {
	port := flag.Int("port", 0, "UDP port to listen for OSC messages")
	gainAddr := flag.String("gain", vmixer.DefaultGainAddr, "gain address template of the mixer")
	muteAddr := flag.String("mute", vmixer.DefaultMuteAddr, "mute address template of the mixer")
	flag.Parse()

	if *port == 0 {
		fmt.Println("Usage: listenosc -port <port> [-gain <template>] [-mute <template>]")
		os.Exit(1)
	}
	for _, tmpl := range []string{*gainAddr, *muteAddr} {
		if err := vmixer.ValidateTemplate(tmpl); err != nil {
			log.Fatal(err)
		}
	}
	addr := "0.0.0.0:" + strconv.Itoa(*port)

	// Strip messages are labelled with their strip index; everything else is
	// printed as is.
	dispatcher := vmixer.NewDispatcher()
	patterns := map[string]string{"gain": vmixer.Pattern(*gainAddr), "mute": vmixer.Pattern(*muteAddr)}
	for kind, pattern := range patterns {
		kind := kind
		dispatcher.AddMsgHandler(pattern, func(msg *osc.Message, captures []string) {
			fmt.Printf("strip %s %s: %v\n", captures[0], kind, msg.Arguments)
		})
	}
	dispatcher.AddMsgHandler("*", func(msg *osc.Message, _ []string) {
		for _, pattern := range patterns {
			if ok, _ := vmixer.MatchAddr(pattern, msg.Address); ok {
				return
			}
		}
		fmt.Printf("Received OSC message: %s %v\n", msg.Address, msg.Arguments)
	})

	server := &osc.Server{
		Addr:       addr,
		Dispatcher: dispatcher,
	}

	fmt.Printf("Listening for OSC messages on %s (UDP)...\n", addr)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start OSC server: %v", err)
	}
}
