package world

import (
	"fmt"

	"munaypaq.game/internal/protocol"
	"munaypaq.game/internal/sim/grid"
	"munaypaq.game/internal/sim/powerup"
)

type CommandKind int

const (
	CmdMove CommandKind = iota + 1
	CmdUsePowerup
	CmdPause
	CmdSave
	CmdSetName
	CmdRestart
)

func (k CommandKind) String() string {
	switch k {
	case CmdMove:
		return "MOVE"
	case CmdUsePowerup:
		return "USE_POWERUP"
	case CmdPause:
		return "PAUSE"
	case CmdSave:
		return "SAVE"
	case CmdSetName:
		return "SET_NAME"
	case CmdRestart:
		return "RESTART"
	default:
		return fmt.Sprintf("CommandKind(%d)", int(k))
	}
}

// Command is one player input, applied at the start of the next tick.
type Command struct {
	Kind    CommandKind  `json:"kind"`
	Dir     grid.Vec     `json:"dir"`
	Powerup powerup.Kind `json:"powerup,omitempty"`
	Target  grid.Vec     `json:"target"`
	Name    string       `json:"name,omitempty"`
}

var moveDirs = map[string]grid.Vec{
	protocol.MoveUp:    grid.Up,
	protocol.MoveDown:  grid.Down,
	protocol.MoveLeft:  grid.Left,
	protocol.MoveRight: grid.Right,
}

// CommandFromInput maps a validated INPUT message to a command.
func CommandFromInput(in protocol.InputMsg) (Command, error) {
	switch {
	case in.Move != "":
		d, ok := moveDirs[in.Move]
		if !ok {
			return Command{}, fmt.Errorf("unknown move direction %q", in.Move)
		}
		return Command{Kind: CmdMove, Dir: d}, nil
	case in.UsePowerup != nil:
		k, err := powerup.ParseKind(in.UsePowerup.Kind)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdUsePowerup, Powerup: k, Target: grid.Vec{X: in.UsePowerup.X, Y: in.UsePowerup.Y}}, nil
	case in.Pause:
		return Command{Kind: CmdPause}, nil
	case in.Save != nil:
		return Command{Kind: CmdSave, Name: in.Save.PlayerName}, nil
	case in.SetName != "":
		return Command{Kind: CmdSetName, Name: in.SetName}, nil
	case in.Restart:
		return Command{Kind: CmdRestart}, nil
	default:
		return Command{}, fmt.Errorf("empty input")
	}
}

func (w *World) applyCommand(c Command) {
	switch c.Kind {
	case CmdMove:
		if !w.simulating() {
			w.reject(c, protocol.ErrPaused)
			return
		}
		w.player.Move(c.Dir)
	case CmdUsePowerup:
		if !w.simulating() {
			w.reject(c, protocol.ErrPaused)
			return
		}
		if code := w.usePowerup(c.Powerup, c.Target); code != "" {
			w.reject(c, code)
		}
	case CmdPause:
		w.togglePause()
	case CmdSave:
		w.saveAndExit(c.Name)
	case CmdSetName:
		w.tracker.SetPlayerName(c.Name)
	default:
		w.reject(c, protocol.ErrBadRequest)
	}
}

func (w *World) reject(c Command, code string) {
	w.emit(protocol.Event{"type": "REJECTED", "command": c.Kind.String(), "code": code})
}
