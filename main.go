package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/BertoldVdb/i2ceeprom/eeprom"
	"github.com/BertoldVdb/i2ceeprom/i2c"
	"github.com/BertoldVdb/i2ceeprom/image"
)

/* Reads are split so each transfer fits in one i2c-dev message */
const readBlockSize = 4096

func readAll(ctx context.Context, e *eeprom.EEPROM, offset uint32, length int) ([]byte, error) {
	out := make([]byte, 0, length)

	for len(out) < length {
		n := length - len(out)
		if n > readBlockSize {
			n = readBlockSize
		}

		buf, err := e.Read(ctx, offset+uint32(len(out)), n)
		if err != nil {
			return out, err
		}
		out = append(out, buf...)
	}

	return out, nil
}

func reportBandwidth(action string, length int, d time.Duration) {
	rate := float64(length) / d.Seconds()
	log.Printf("%s %d bytes in %v @ %.0f B/s", action, length, d.Round(time.Millisecond), rate)
}

func listDevices() {
	for _, name := range eeprom.Devices() {
		p, _ := eeprom.Lookup(name)
		fmt.Printf("%-8s %6d bytes, page %3d, %2d address bits (%v), %d kHz\n",
			p.Name, p.Capacity, p.PageSize, p.AddressBits, p.Addressing, p.MaxFrequency/1000)
	}
}

func main() {
	dev := flag.String("dev", "/dev/i2c-1", "I2C bus device")
	model := flag.String("type", "24AA32A", "EEPROM model ("+strings.Join(eeprom.Devices(), ", ")+")")
	addr := flag.Uint("addr", 0x50, "Slave address")
	offset := flag.Uint("offset", 0, "Start offset")
	length := flag.Int("length", 0, "Number of bytes to read, 0 reads up to the end")
	readFile := flag.String("read", "", "Dump the device to this file")
	writeFile := flag.String("write", "", "Program this file into the device")
	verify := flag.Bool("verify", false, "Read back and compare after writing")
	list := flag.Bool("list", false, "List supported models")
	verbose := flag.Bool("v", false, "Log every bus operation")

	flag.Parse()

	if *list {
		listDevices()
		return
	}

	profile, err := eeprom.Lookup(*model)
	if err != nil {
		log.Fatalln(err)
	}

	if *addr > 0x7f || *offset > uint(profile.Capacity) {
		log.Fatalln("address or offset out of range")
	}

	bus, err := i2c.Open(*dev)
	if err != nil {
		log.Fatalln(err)
	}
	defer bus.Close()

	e, err := eeprom.New(bus, profile, uint8(*addr))
	if err != nil {
		log.Fatalln(err)
	}
	if *verbose {
		e.LogFunc = log.Printf
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := uint32(*offset)

	if *writeFile != "" {
		data, err := os.ReadFile(*writeFile)
		if err != nil {
			log.Fatalln(err)
		}

		if _, err := image.Fit(start, len(data), profile.Capacity); err != nil {
			log.Fatalln(err)
		}

		e.ProgressFunc = func(done int, total int) {
			fmt.Fprintf(os.Stderr, "\rWriting: %3d%%", done*100/total)
		}

		t := time.Now()
		err = e.Write(ctx, start, data)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			log.Fatalln("write failed, device may be partially written:", err)
		}
		reportBandwidth("Write", len(data), time.Since(t))

		if *verify {
			rb, err := readAll(ctx, e, start, len(data))
			if err != nil {
				log.Fatalln(err)
			}
			if i := image.Compare(data, rb); i >= 0 {
				log.Fatalf("verify failed @ 0x%04x: expected 0x%02x, read 0x%02x", start+uint32(i), data[i], rb[i])
			}
			log.Printf("Verified, CRC32 %08x", image.CRC32(rb))
		}
	}

	if *readFile != "" {
		n, err := image.Fit(start, *length, profile.Capacity)
		if err != nil {
			log.Fatalln(err)
		}

		t := time.Now()
		data, err := readAll(ctx, e, start, n)
		if err != nil {
			log.Fatalln(err)
		}
		reportBandwidth("Read", len(data), time.Since(t))

		if err := os.WriteFile(*readFile, data, 0644); err != nil {
			log.Fatalln(err)
		}
		log.Printf("Dumped 0x%x bytes @ 0x%04x, CRC32 %08x", len(data), start, image.CRC32(data))
	}
}
