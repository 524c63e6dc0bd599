package jeebie

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// batteryRAM returns the cartridge RAM when it is battery backed.
func (d *DMG) batteryRAM() []byte {
	cart := d.mem.Cartridge()
	if !cart.Header().HasBattery {
		return nil
	}
	return cart.MBC().RAM()
}

// loadBattery fills cartridge RAM from SavePath. A missing file is a fresh
// cartridge; a short file fills what it covers.
func (d *DMG) loadBattery() error {
	ram := d.batteryRAM()
	if d.opts.SavePath == "" || len(ram) == 0 {
		return nil
	}

	data, err := os.ReadFile(d.opts.SavePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading battery RAM: %w", err)
	}
	if len(data) != len(ram) {
		slog.Warn("Battery RAM size mismatch", "path", d.opts.SavePath, "file", len(data), "cartridge", len(ram))
	}
	copy(ram, data)
	slog.Info("Loaded battery RAM", "path", d.opts.SavePath, "bytes", len(data))
	return nil
}

func (d *DMG) saveBattery() error {
	ram := d.batteryRAM()
	if d.opts.SavePath == "" || len(ram) == 0 {
		return nil
	}
	if err := os.WriteFile(d.opts.SavePath, ram, 0o644); err != nil {
		return fmt.Errorf("writing battery RAM: %w", err)
	}
	slog.Info("Saved battery RAM", "path", d.opts.SavePath, "bytes", len(ram))
	return nil
}
