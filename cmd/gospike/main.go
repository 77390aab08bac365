package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brickble/gospike/pkg/ble"
	_ "github.com/brickble/gospike/pkg/ble/all"
	"github.com/brickble/gospike/pkg/config"
	"github.com/brickble/gospike/pkg/hub"
	"github.com/brickble/gospike/pkg/messages"
	log "github.com/sirupsen/logrus"
)

const usage = `usage: gospike [flags] <command> [args]

commands:
  info            print the hub's protocol and sizing parameters
  listen [n]      enable device notifications and print the next n messages (default 10)
  upload <file>   upload a program into a slot and start it
  start           start the program in a slot
  stop            stop the program in a slot
  clear           clear a slot
`

func main() {
	adapter := flag.String("a", "tinygo", "BLE adapter e.g. tinygo,virtual")
	profilePath := flag.String("c", "", "connection profile (ini)")
	address := flag.String("d", "", "explicit device address")
	slot := flag.Int("s", 0, "program slot")
	name := flag.String("n", "program.py", "program name")
	period := flag.Duration("p", 50*time.Millisecond, "notification period")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if flag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	profile := &config.Profile{Adapter: *adapter}
	if *profilePath != "" {
		loaded, err := config.Load(*profilePath)
		if err != nil {
			log.Fatalf("could not load profile %v : %v", *profilePath, err)
		}
		profile = loaded
	}
	if *address != "" {
		profile.Client.Address = *address
	}

	central, err := ble.NewCentral(profile.Adapter, nil)
	if err != nil {
		log.Fatalf("could not create central %v : %v", profile.Adapter, err)
	}
	client := hub.NewClient(central, &profile.Client, nil)

	ctx := context.Background()
	if err := client.Connect(ctx); err != nil {
		log.Fatalf("could not connect : %v", err)
	}
	defer client.Disconnect()

	if err := run(ctx, client, flag.Args(), uint8(*slot), *name, *period); err != nil {
		log.Fatalf("%v failed : %v", flag.Arg(0), err)
	}
}

func run(ctx context.Context, client *hub.Client, args []string, slot uint8, name string, period time.Duration) error {
	switch args[0] {
	case "info":
		info, err := client.GetInfo(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("rpc %d.%d (build %d) firmware %d.%d\n",
			info.RPCMajor, info.RPCMinor, info.RPCBuild, info.FirmwareMajor, info.FirmwareMinor)
		fmt.Printf("max packet %d, max message %d, max chunk %d\n",
			info.MaxPacketSize, info.MaxMessageSize, info.MaxChunkSize)
		return nil

	case "listen":
		count := 10
		if len(args) > 1 {
			parsed, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("bad count %v : %w", args[1], err)
			}
			count = parsed
		}
		if _, err := client.GetInfo(ctx); err != nil {
			return err
		}
		if err := client.EnableNotifications(ctx, period); err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			msg, err := client.Recv(ctx)
			if err != nil {
				return err
			}
			switch m := msg.(type) {
			case *messages.DeviceNotification:
				fmt.Printf("device notification, %d bytes\n", len(m.Payload))
			case *messages.ConsoleNotification:
				fmt.Printf("console: %s\n", m.Text)
			default:
				fmt.Printf("message 0x%02X\n", m.MessageID())
			}
		}
		return client.DisableNotifications(ctx)

	case "upload":
		if len(args) < 2 {
			return fmt.Errorf("upload needs a file argument")
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		if err := client.ClearSlot(ctx, slot); err != nil {
			return err
		}
		return client.UploadProgram(ctx, slot, name, data)

	case "start":
		return client.StartProgram(ctx, slot)

	case "stop":
		return client.StopProgram(ctx, slot)

	case "clear":
		return client.ClearSlot(ctx, slot)

	default:
		return fmt.Errorf("unknown command %v", args[0])
	}
}
