// Package program builds MicroPython sources for upload to the hub. The hub
// runs plain MicroPython, so a program is just text; these helpers assemble
// snippets for the common peripherals.
package program

import (
	"fmt"
	"strings"
)

// Hub ports as named in the MicroPython "hub" module
const (
	PortA = "port.A"
	PortB = "port.B"
	PortC = "port.C"
	PortD = "port.D"
	PortE = "port.E"
	PortF = "port.F"
)

// Builder assembles import lines and statements into one source file.
type Builder struct {
	imports []string
	body    []string
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Import records a module import, deduplicated.
func (b *Builder) Import(module string) *Builder {
	for _, existing := range b.imports {
		if existing == module {
			return b
		}
	}
	b.imports = append(b.imports, module)
	return b
}

// Add appends one statement or a whole snippet.
func (b *Builder) Add(snippet string) *Builder {
	b.body = append(b.body, strings.TrimRight(snippet, "\n"))
	return b
}

// Source renders the program bytes ready for upload.
func (b *Builder) Source() []byte {
	var sb strings.Builder
	sb.WriteString("from hub import port\n")
	for _, module := range b.imports {
		fmt.Fprintf(&sb, "import %s\n", module)
	}
	for _, line := range b.body {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// MotorType selects the velocity range of the attached motor.
type MotorType int

const (
	MotorSmall MotorType = iota
	MotorMedium
	MotorLarge
)

func (t MotorType) velocityRange() (int, int) {
	switch t {
	case MotorMedium:
		return -1100, 1100
	case MotorLarge:
		return -1050, 1050
	default:
		return -660, 660
	}
}

// Motor templates motor commands for one port.
type Motor struct {
	Port string
	Type MotorType
}

func (m Motor) checkVelocity(velocity int) error {
	lo, hi := m.Type.velocityRange()
	if velocity < lo || velocity > hi {
		return fmt.Errorf("velocity must be between %d and %d", lo, hi)
	}
	return nil
}

// RunForDegrees turns the motor by the given angle.
func (m Motor) RunForDegrees(b *Builder, degrees, velocity int) error {
	if err := m.checkVelocity(velocity); err != nil {
		return err
	}
	b.Import("motor")
	b.Add(fmt.Sprintf("motor.run_for_degrees(%s, %d, %d)", m.Port, degrees, velocity))
	return nil
}

// Start spins the motor until stopped.
func (m Motor) Start(b *Builder, velocity int) error {
	if err := m.checkVelocity(velocity); err != nil {
		return err
	}
	b.Import("motor")
	b.Add(fmt.Sprintf("motor.run(%s, %d)", m.Port, velocity))
	return nil
}

// Stop halts the motor.
func (m Motor) Stop(b *Builder) {
	b.Import("motor")
	b.Add(fmt.Sprintf("motor.stop(%s)", m.Port))
}

// LightMatrixText scrolls text on the 5x5 display.
func LightMatrixText(b *Builder, text string) {
	b.Import("hub")
	b.Add(fmt.Sprintf("hub.light_matrix.write(%q)", text))
}
