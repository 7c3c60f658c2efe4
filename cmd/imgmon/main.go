package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/robotalks/imglink/pkg/imgfile"
	"github.com/robotalks/imglink/pkg/msgs"
	"github.com/robotalks/imglink/pkg/relay/mqtt"
	"github.com/robotalks/imglink/pkg/transfer"
)

var (
	mqttURL = mqtt.DefaultURL
	saveDir string
)

func init() {
	if val := os.Getenv("IMGLINK_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&saveDir, "save", saveDir, "Save received frames as PNG into the directory.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	defer q.Close()

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		frame, err := msgs.DecodeImageFrame(payload)
		if err != nil {
			log.Printf("%s: bad frame: %v", topic, err)
			return
		}
		d, err := frame.Descriptor()
		if err != nil {
			log.Printf("%s: %s: %v", topic, frame.Source, err)
			return
		}
		latency := time.Since(time.Unix(0, frame.Timestamp))
		log.Printf("%s: [%s] %s %v (%v)", topic, frame.Source, frame.Kind, d, latency)
		if saveDir == "" {
			return
		}
		name := filepath.Join(saveDir, frame.Kind+"-"+time.Now().Format("150405.000")+".png")
		if err := imgfile.Save(name, transfer.HeaderOf(transfer.MarkerWrite, d), d.Bytes()); err != nil {
			log.Printf("save %s: %v", name, err)
		}
	}))
	<-(chan struct{})(nil)
}
