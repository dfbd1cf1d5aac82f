package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/beanboi7/chyp8/chyp"
	"github.com/beanboi7/chyp8/emu/audio"
	"github.com/beanboi7/chyp8/emu/cpu"
	"github.com/beanboi7/chyp8/emu/screen"
	"github.com/beanboi7/chyp8/insides/config"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"
	"github.com/spf13/viper"
)

var startCmd = &cobra.Command{
	Use:   "start `path/ROM`",
	Short: "load and start the Emulator",
	Args:  cobra.ExactArgs(1),
	RunE:  Start,
}

var (
	mute     bool
	dumpFile string
)

func init() {
	flags := startCmd.Flags()
	flags.IntP("refresh", "r", 60, "sets the refresh rate of the display in Hz")
	flags.IntP("cycles", "c", 8, "instructions executed per frame")
	flags.IntP("scale", "s", 10, "window pixels per Chip-8 pixel")
	flags.BoolVar(&mute, "mute", false, "disable the buzzer")
	flags.StringVar(&dumpFile, "dump", "", "write a hex dump of memory to this file when the emulator stops")

	cobra.CheckErr(viper.BindPFlag(config.KeyRefreshRate, flags.Lookup("refresh")))
	cobra.CheckErr(viper.BindPFlag(config.KeyCyclesPerFrame, flags.Lookup("cycles")))
	cobra.CheckErr(viper.BindPFlag(config.KeyScale, flags.Lookup("scale")))
}

// chyp8 start 'path/to/ROM' -r 120
func Start(cmd *cobra.Command, args []string) error {
	log := newLogger()

	if mute {
		viper.Set(config.KeySoundEnabled, false)
	}
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	romPath := args[0]
	emu := cpu.NewEMU(cpu.WithLogger(log))
	if err := emu.LoadROM(romPath); err != nil {
		return fmt.Errorf("starting the emulator: %w", err)
	}

	win, err := screen.NewWindow("Chyp8 - "+filepath.Base(romPath), settings)
	if err != nil {
		return err
	}
	defer win.Destroy()

	beeper, err := audio.New(settings.Sound)
	if err != nil {
		log.WARN.Printf("sound disabled: %v", err)
		beeper = audio.Silent()
	}
	defer beeper.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := chyp.New(emu, win, beeper, settings, log)
	runErr := c.Run(ctx)
	if dumpFile != "" {
		if err := dumpMemory(emu, dumpFile, log); err != nil {
			log.ERROR.Println(err)
		}
	}
	return runErr
}

func dumpMemory(emu *cpu.EMU, path string, log *jww.Notepad) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating memory dump: %w", err)
	}
	defer f.Close()

	if err := emu.Memory().Dump(f); err != nil {
		return fmt.Errorf("writing memory dump: %w", err)
	}
	log.INFO.Printf("memory dumped to %s", path)
	return nil
}
