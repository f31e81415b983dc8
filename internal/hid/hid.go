// Package hid holds the HID usage constants and helpers the binding
// validator needs. It deliberately covers only usage identification; report
// encoding lives outside this project.
package hid

// UsagePage identifies a HID usage page.
type UsagePage uint16

const (
	// PageKeyboard is the Keyboard/Keypad usage page (0x07).
	PageKeyboard UsagePage = 0x07
	// PageConsumer is the Consumer usage page (0x0C).
	PageConsumer UsagePage = 0x0C
)

const (
	// KeyboardNKROMaxUsage is the highest keyboard usage carried in the NKRO
	// report bitmap.
	KeyboardNKROMaxUsage = 0x67

	// LeftControl..RightGUI bound the modifier usage range, reported outside
	// the NKRO bitmap.
	LeftControl = 0xE0
	RightGUI    = 0xE7

	// ConsumerMaxUsageBasic and ConsumerMaxUsageFull bound the consumer page
	// depending on the consumer report width the firmware was built with.
	ConsumerMaxUsageBasic = 0xFF
	ConsumerMaxUsageFull  = 0xFFF
)

// Usage is a behavior parameter carrying a usage page in its high 16 bits
// and a usage ID in its low 16 bits.
type Usage uint32

// Page returns the usage page half of the encoded parameter.
func (u Usage) Page() UsagePage {
	return UsagePage(u >> 16)
}

// ID returns the usage ID half of the encoded parameter.
func (u Usage) ID() uint16 {
	return uint16(u & 0xFFFF)
}

// ValidKeyboardUsage reports whether id is a usage the keyboard page can
// express: a nonzero entry in the NKRO range, or a modifier key.
func ValidKeyboardUsage(id uint16) bool {
	if id == 0 {
		return false
	}
	return id <= KeyboardNKROMaxUsage || (id >= LeftControl && id <= RightGUI)
}
