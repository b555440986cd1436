package romload

import (
	"fmt"
	"log"
	"os"

	"github.com/jmchacon/beeb/bank"
	"github.com/jmchacon/beeb/memory"
)

// LoadSideways reads path and installs it as a new ROM bank in sideways
// slot, replacing whatever (if anything) already occupies it. slot must
// be 0-15.
func LoadSideways(sideways *bank.Sideways, slot int, path string) error {
	if slot < 0 || slot >= bank.NumSlots {
		return fmt.Errorf("romload: invalid sideways slot %d, must be 0-%d", slot, bank.NumSlots-1)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("romload: %w", err)
	}
	rom, err := memory.NewROMBank(bank.SlotSize, nil)
	if err != nil {
		return fmt.Errorf("romload: %w", err)
	}
	if rom.Load(data) {
		log.Printf("romload: %s (%d bytes) is larger than a sideways slot and was truncated", path, len(data))
	}
	sideways.SetSlot(slot, rom)
	return nil
}
