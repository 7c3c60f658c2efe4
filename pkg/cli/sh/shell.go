// Package sh provides the interactive host shell talking to a device.
package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/imglink/pkg/config"
	"github.com/robotalks/imglink/pkg/host"
	"github.com/robotalks/imglink/pkg/imgfile"
	"github.com/robotalks/imglink/pkg/link"
	"github.com/robotalks/imglink/pkg/link/dial"
	"github.com/robotalks/imglink/pkg/msgs"
	"github.com/robotalks/imglink/pkg/relay/mqtt"
	"github.com/robotalks/imglink/pkg/transfer"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool

	Shell   *ishell.Shell
	Config  *config.Config
	Session *Session
	Relay   *mqtt.Relay
}

// Session is an opened link to a device.
type Session struct {
	URL  string
	Conn link.Conn
	Peer *host.Peer
}

const (
	shellKey       = "$shell"
	unopenedPrompt = "[none] > "
)

var (
	// ErrNotOpened indicates a command requires an opened link.
	ErrNotOpened = errors.New("link not opened")

	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
		&PollCmd,
		&RecvCmd,
		&SendCmd,
		&ServeCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unopenedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpened wraps command func requires an opened link.
func MustBeOpened(fn func(c *ishell.Context, s *Shell)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.Session == nil {
			c.Err(ErrNotOpened)
			return
		}
		fn(c, s)
	}
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

// Open opens the link at url, replacing the current one.
func (s *Shell) Open(url string) error {
	ctx, cancel := interruptible()
	defer cancel()
	conn, err := dial.Open(ctx, url)
	if err != nil {
		return err
	}
	s.Close()
	s.Session = &Session{URL: url, Conn: conn, Peer: host.NewPeer(conn, &s.Config.Host)}
	s.Shell.SetPrompt(fmt.Sprintf("[%s] > ", url))
	return nil
}

// Close closes the current link.
func (s *Shell) Close() {
	if s.Session != nil {
		if err := s.Session.Conn.Close(); err != nil {
			glog.Warningf("close %s: %v", s.Session.URL, err)
		}
		s.Session = nil
		s.Shell.SetPrompt(unopenedPrompt)
	}
}

// ConnectRelay connects the MQTT relay when a broker is configured.
func (s *Shell) ConnectRelay() error {
	if s.Config.MQTT == "" || s.Relay != nil {
		return nil
	}
	q, err := mqtt.NewQueueFromURL(s.Config.MQTT)
	if err != nil {
		return err
	}
	if err := q.Connect(); err != nil {
		return err
	}
	s.Relay = mqtt.NewRelay(q)
	s.Relay.Subscribe()
	return nil
}

// Handler creates the ImageHandler used by serve.
func (s *Shell) Handler(file, outDir string) *ImageHandler {
	h := &ImageHandler{File: file, OutDir: outDir, OnResult: s.printer(nil)}
	if s.Relay != nil {
		h.Frames, h.Publisher = s.Relay, s.Relay
	}
	return h
}

func (s *Shell) publish(kind string, h transfer.Header, payload []byte) {
	if s.Relay != nil {
		s.Relay.Publish(kind, h, payload)
	}
}

func (s *Shell) printer(c *ishell.Context) func(Result) {
	out := s.Shell.Println
	if c != nil {
		out = c.Println
	}
	return func(r Result) {
		if s.OutputJSON {
			data, err := json.Marshal(r)
			if err != nil {
				glog.Errorf("encode result: %v", err)
				return
			}
			out(string(data))
			return
		}
		msg := fmt.Sprintf("%s %dx%d %s %d bytes", r.Request, r.Width, r.Height, r.Format, r.Bytes)
		if r.File != "" {
			msg += " " + r.File
		}
		out(msg)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if err := s.ConnectRelay(); err != nil {
		log.Fatalf("connect %s failed: %v", s.Config.MQTT, err)
	}
	if s.AutoOpen && s.Config.Link != "" {
		if err := s.Open(s.Config.Link); err != nil {
			if !s.Interactive {
				log.Fatalf("open %s failed: %v", s.Config.Link, err)
			}
			s.Shell.Printf("open %s failed: %v\n", s.Config.Link, err)
		}
	}
	defer s.Close()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// interruptible creates a context canceled by Ctrl-C.
func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// exchange serves requests with h until one of marker has been served.
// Requests of the other direction are rejected and reported.
func exchange(c *ishell.Context, s *Shell, marker transfer.Marker, h host.Handler) error {
	ctx, cancel := interruptible()
	defer cancel()
	for {
		req, err := s.Session.Peer.Exchange(ctx, h)
		if err != nil {
			if req != nil && errors.Is(err, host.ErrUnexpectedRequest) {
				c.Printf("skip %v\n", req)
				continue
			}
			return err
		}
		if req.Marker == marker {
			return nil
		}
	}
}

var (
	// OpenCmd opens a link.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[URL]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			url := s.Config.Link
			if len(c.Args) > 0 {
				url = c.Args[0]
			}
			if err := s.Open(url); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes current link.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}

	// PollCmd waits for the next request without serving it.
	PollCmd = ishell.Cmd{
		Name:    "poll",
		Aliases: []string{"p"},
		Help:    "",
		Func: MustBeOpened(func(c *ishell.Context, s *Shell) {
			ctx, cancel := interruptible()
			defer cancel()
			req, err := s.Session.Peer.Poll(ctx)
			if err != nil {
				c.Err(err)
				return
			}
			s.printer(c)(resultOf(*req, ""))
		}),
	}

	// RecvCmd receives one image from the device.
	RecvCmd = ishell.Cmd{
		Name:    "recv",
		Aliases: []string{"r"},
		Help:    "[OUT.png]",
		Func: MustBeOpened(func(c *ishell.Context, s *Shell) {
			var out string
			if len(c.Args) > 0 {
				out = c.Args[0]
			}
			err := exchange(c, s, transfer.MarkerWrite, host.Funcs{
				Write: func(ctx context.Context, req transfer.Header, payload []byte) error {
					s.publish(msgs.KindReceived, req, payload)
					if out != "" {
						if err := imgfile.Save(out, req, payload); err != nil {
							return err
						}
					}
					s.printer(c)(resultOf(req, out))
					return nil
				},
			})
			if err != nil {
				c.Err(err)
			}
		}),
	}

	// SendCmd answers one read request with an image file.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "FILE",
		Func: MustBeOpened(func(c *ishell.Context, s *Shell) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("image file required"))
				return
			}
			file := c.Args[0]
			err := exchange(c, s, transfer.MarkerRead, host.Funcs{
				Read: func(ctx context.Context, req transfer.Header) ([]byte, error) {
					payload, err := imgfile.Load(file, req.Height, req.Width, req.Format)
					if err != nil {
						return nil, err
					}
					s.publish(msgs.KindSent, req, payload)
					s.printer(c)(resultOf(req, file))
					return payload, nil
				},
			})
			if err != nil {
				c.Err(err)
			}
		}),
	}

	// ServeCmd serves requests until interrupted.
	ServeCmd = ishell.Cmd{
		Name: "serve",
		Help: "[FILE] [OUTDIR]",
		Func: MustBeOpened(func(c *ishell.Context, s *Shell) {
			var file, outDir string
			if len(c.Args) > 0 {
				file = c.Args[0]
			}
			if len(c.Args) > 1 {
				outDir = c.Args[1]
			}
			h := s.Handler(file, outDir)
			h.OnResult = s.printer(c)
			ctx, cancel := interruptible()
			defer cancel()
			err := s.Session.Peer.Serve(ctx, h)
			c.Printf("%d images received\n", h.Received())
			if err != nil && !errors.Is(err, context.Canceled) {
				c.Err(err)
			}
		}),
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf, err := config.Load()
	if err != nil {
		log.Fatalln(err)
	}
	New(conf).WithAutoOpen(true).Run(flag.Args()...)
}
