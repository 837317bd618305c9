// Command listenmidi prints the Control Change messages of a MIDI input along
// with how nk2mix would classify them.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/gomidi/midi/v2"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/Porma/nk2-volume-controller/config"
)

func main() {
	configPath := flag.String("config", "", "optional nk2mix configuration supplying port and layout")
	port := flag.String("port", "", "substring of the MIDI input port name (overrides the configuration)")
	list := flag.Bool("list", false, "list MIDI ports and exit")
	flag.Parse()

	defer midi.CloseDriver()

	if *list {
		fmt.Printf("inports:\n%s\noutports:\n%s\n", midi.GetInPorts(), midi.GetOutPorts())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *port != "" {
		cfg.MIDI.In = *port
	}

	in, err := midi.FindInPort(cfg.MIDI.In)
	if err != nil {
		fmt.Printf("No input port matching %q. Available:\n%s\n", cfg.MIDI.In, midi.GetInPorts())
		os.Exit(1)
	}

	stop, err := midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		var ch, controller, value uint8
		if !msg.GetControlChange(&ch, &controller, &value) {
			fmt.Printf("%6dms %s\n", timestampms, msg)
			return
		}
		cat, lane := cfg.Layout.Classify(controller)
		fmt.Printf("%6dms ch=%d cc=%3d value=%3d %s lane=%d\n", timestampms, ch+1, controller, value, cat, lane)
	})
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", in, err)
	}
	defer stop()

	fmt.Printf("Listening for MIDI messages on %s...\n", in)
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs
}
