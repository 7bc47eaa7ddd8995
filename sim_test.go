// SPDX-License-Identifier: MIT

//
// Pin-level DS1302 model used to exercise the real transport. The model
// shifts the command in on rising clock edges while CE is asserted,
// drives read data on falling edges, and commits clock bursts when CE
// deasserts - the same edge behaviour the data sheet specifies.
//
package ds1302

type simChip struct {
	clock   ClockRegisters
	ram     [RAMSize]byte
	charger byte

	ce     Level
	clk    Level
	ioHost Level
	ioChip Level
	ioDir  Direction

	shift   byte
	nbits   int
	cmd     byte
	haveCmd bool
	nbytes  int
	pending ClockRegisters
	latched ClockRegisters
	rdata   []byte
	rbit    int

	// advance the seconds register every tickEvery CE assertions;
	// 0 leaves the clock frozen.
	tickEvery int
	captures  int
}

const (
	simCE = iota
	simCLK
	simIO
)

type simPin struct {
	c  *simChip
	id int
}

// Pins returns the chip-enable, clock and data pins of the model.
func (c *simChip) Pins() (ce, clk, io Pin) {
	return simPin{c, simCE}, simPin{c, simCLK}, simPin{c, simIO}
}

func (p simPin) Write(l Level) {
	c := p.c
	switch p.id {
	case simCE:
		if l == c.ce {
			return
		}
		c.ce = l
		if l {
			c.begin()
		} else {
			c.end()
		}
	case simCLK:
		if l == c.clk {
			return
		}
		c.clk = l
		if !bool(c.ce) {
			return
		}
		if l {
			c.risingEdge()
		} else {
			c.fallingEdge()
		}
	case simIO:
		c.ioHost = l
	}
}

func (p simPin) Read() Level {
	c := p.c
	if p.id == simIO && c.driving() {
		return c.ioChip
	}
	switch p.id {
	case simCE:
		return c.ce
	case simCLK:
		return c.clk
	}
	return c.ioHost
}

func (p simPin) SetDirection(d Direction) {
	if p.id == simIO {
		p.c.ioDir = d
	}
}

// driving reports whether the chip owns the data line: a read command
// has been shifted in and the host has turned the pin around.
func (c *simChip) driving() bool {
	return bool(c.ce) && c.haveCmd && c.cmd&readCmd != 0 && c.ioDir == Input
}

func (c *simChip) begin() {
	c.shift = 0
	c.nbits = 0
	c.haveCmd = false
	c.nbytes = 0
	c.rbit = 0
	c.captures++
	if c.tickEvery > 0 && c.captures%c.tickEvery == 0 {
		c.tick()
	}
	c.latched = c.clock
}

func (c *simChip) end() {
	// A clock-burst write only reaches the counting registers if all 8
	// registers arrived and the chip is unlocked.
	if c.haveCmd && c.cmd&readCmd == 0 && c.cmd == ClockBurst &&
		c.nbytes == NumClockRegs && !c.protected() {
		c.clock = c.pending
	}
}

func (c *simChip) protected() bool {
	return c.clock[Control]&WriteProtect != 0
}

func (c *simChip) risingEdge() {
	if c.haveCmd && c.cmd&readCmd != 0 {
		return // host clocking read data through
	}
	c.shift >>= 1
	if c.ioHost {
		c.shift |= 0x80
	}
	c.nbits++
	if c.nbits < 8 {
		return
	}
	c.nbits = 0
	b := c.shift
	c.shift = 0
	if !c.haveCmd {
		c.cmd = b
		c.haveCmd = true
		if b&readCmd != 0 {
			c.rdata = c.readData(b &^ readCmd)
		}
		return
	}
	c.accept(b)
}

func (c *simChip) fallingEdge() {
	if !c.haveCmd || c.cmd&readCmd == 0 {
		return
	}
	if n := c.rbit / 8; n < len(c.rdata) {
		c.ioChip = c.rdata[n]>>(c.rbit%8)&1 != 0
	}
	c.rbit++
}

func (c *simChip) readData(reg byte) []byte {
	switch {
	case reg == ClockBurst:
		return append([]byte(nil), c.latched[:]...)
	case reg == RAMBurst:
		return append([]byte(nil), c.ram[:]...)
	case reg == RegCharger:
		return []byte{c.charger}
	case reg >= RAMBase:
		return []byte{c.ram[(reg>>1)&0x1f]}
	default:
		return []byte{c.latched[offset(reg)]}
	}
}

func (c *simChip) accept(b byte) {
	n := c.nbytes
	c.nbytes++
	switch reg := c.cmd &^ readCmd; {
	case reg == ClockBurst:
		if n < NumClockRegs {
			c.pending[n] = b
		}
	case reg == RAMBurst:
		if !c.protected() && n < RAMSize {
			c.ram[n] = b
		}
	case reg == RegControl:
		// the control register is writable regardless of WP,
		// otherwise the chip could never be unlocked
		c.clock[Control] = b
	case reg == RegCharger:
		if !c.protected() {
			c.charger = b
		}
	case reg >= RAMBase:
		if !c.protected() {
			c.ram[(reg>>1)&0x1f] = b
		}
	default:
		if !c.protected() {
			c.clock[offset(reg)] = b
		}
	}
}

func (c *simChip) tick() {
	s := bin(c.clock[Seconds]&SecondsMask) + 1
	if s > 59 {
		s = 0
	}
	c.clock[Seconds] = c.clock[Seconds]&HaltBit | bcd(s)
}

// deadPin models an absent chip: nothing ever drives the data line and
// the pull state reads it high.
type deadPin struct{ writes *int }

func (p deadPin) Write(Level)            { *p.writes++ }
func (p deadPin) Read() Level            { return High }
func (p deadPin) SetDirection(Direction) {}
