package flags

import (
	"errors"
	"fmt"
	"strconv"
)

// Capabilities contains the same information as WslFlags but in a struct instead of an integer.
type Capabilities struct {
	InteropEnabled         bool  // Whether interop with windows is enabled
	PathAppended           bool  // Whether Windows paths are appended
	DriveMountingEnabled   bool  // Whether drive mounting is enabled
	UndocumentedWSLVersion uint8 // Undocumented variable. WSL1 vs. WSL2. Zero means unknown.
}

// Unpack examines a WslFlags object and stores its data in a Capabilities struct.
// Bits that WSL is not known to use are rejected.
func Unpack(f WslFlags) (Capabilities, error) {
	var c Capabilities

	if unknown := f &^ known; unknown != 0 {
		return c, fmt.Errorf("unknown bits 0x%x in flags 0x%x", uint32(unknown), uint32(f))
	}

	c.InteropEnabled = f&flag_ENABLE_INTEROP != 0
	c.PathAppended = f&flag_APPEND_NT_PATH != 0
	c.DriveMountingEnabled = f&flag_ENABLE_DRIVE_MOUNTING != 0

	c.UndocumentedWSLVersion = 1
	if f&flag_undocumented_WSL_VERSION != 0 {
		c.UndocumentedWSLVersion = 2
	}

	return c, nil
}

// Pack generates a WslFlags object from the Capabilities struct.
func (c Capabilities) Pack() (WslFlags, error) {
	var f WslFlags

	if c.InteropEnabled {
		f = f | flag_ENABLE_INTEROP
	}

	if c.PathAppended {
		f = f | flag_APPEND_NT_PATH
	}

	if c.DriveMountingEnabled {
		f = f | flag_ENABLE_DRIVE_MOUNTING
	}

	switch c.UndocumentedWSLVersion {
	case 0, 1:
	case 2:
		f = f | flag_undocumented_WSL_VERSION
	default:
		return f, fmt.Errorf("unknown WSL version %d", c.UndocumentedWSLVersion)
	}

	return f, nil
}

// Binary renders the three documented flags as three binary digits,
// most significant first: drive mounting, path appending, interop.
func (c Capabilities) Binary() string {
	documented := Capabilities{
		InteropEnabled:       c.InteropEnabled,
		PathAppended:         c.PathAppended,
		DriveMountingEnabled: c.DriveMountingEnabled,
	}

	// Pack only fails on the WSL version, which is left unset here.
	f, _ := documented.Pack()
	return fmt.Sprintf("%03b", uint32(f))
}

// ParseBinary is the inverse of Binary. It requires exactly three binary digits.
// The undocumented WSL version is left unset.
func ParseBinary(s string) (Capabilities, error) {
	if len(s) != 3 {
		return Capabilities{}, fmt.Errorf("flags %q: 3 binary digits are expected", s)
	}

	v, err := strconv.ParseUint(s, 2, 3)
	if err != nil {
		return Capabilities{}, fmt.Errorf("flags %q: 3 binary digits are expected", s)
	}

	c, err := Unpack(WslFlags(v))
	if err != nil {
		return Capabilities{}, err
	}
	c.UndocumentedWSLVersion = 0

	return c, nil
}

// MarshalTOML renders the documented flags as a TOML binary integer.
func (c Capabilities) MarshalTOML() ([]byte, error) {
	return []byte("0b" + c.Binary()), nil
}

// UnmarshalTOML reads the documented flags back from a TOML integer.
func (c *Capabilities) UnmarshalTOML(v any) error {
	n, ok := v.(int64)
	if !ok {
		return fmt.Errorf("flags must be an integer, got %T", v)
	}
	if n < 0 || n > 0b111 {
		return errors.New("flags must be between 0b000 and 0b111")
	}

	up, err := Unpack(WslFlags(n))
	if err != nil {
		return err
	}
	up.UndocumentedWSLVersion = 0

	*c = up
	return nil
}
