package sim

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/calvinmclean/teststand"
)

// ESCVersion is the firmware version the simulated ESC reports
const ESCVersion = "1.3.0"

// ESC simulates a BLDriver speed controller
type ESC struct {
	*port
	Motor   *Motor
	Version string

	mtx     sync.Mutex
	pending bytes.Buffer
}

func NewESC() *ESC {
	e := &ESC{
		Motor:   NewMotor(),
		Version: ESCVersion,
	}
	e.port = newPort(e.receive, nil)
	return e
}

func (e *ESC) receive(b []byte) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.pending.Write(b)
	for {
		line, err := e.pending.ReadString('\n')
		if err != nil {
			e.pending.WriteString(line)
			return
		}
		if resp := e.handle(strings.TrimSpace(line)); resp != "" {
			e.reply([]byte(resp + "\n"))
		}
	}
}

func (e *ESC) handle(cmd string) string {
	switch {
	case cmd == "V":
		return "V " + e.Version
	case cmd == "ON":
		e.Motor.SetRunning(true)
	case cmd == "OFF":
		e.Motor.SetRunning(false)
	case cmd == "T":
		rpm, amps, volts := e.Motor.Sample()
		return fmt.Sprintf("T %d %d %d", int32(amps*1e6), int32(volts*1e6), int32(rpm))
	case strings.HasPrefix(cmd, "D"):
		v, err := strconv.Atoi(cmd[1:])
		if err == nil {
			e.Motor.SetDuty(float64(v) / float64(teststand.PercentFull))
		}
	case strings.HasPrefix(cmd, "R"):
		v, err := strconv.Atoi(cmd[1:])
		if err == nil {
			e.Motor.SetRPM(float64(v))
		}
	}
	return ""
}
