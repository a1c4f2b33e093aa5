package nsf

import "fmt"

// ChannelSlots is the number of logical mask/mute slots the renderer
// exposes.
const ChannelSlots = 32

var channelNames = [...]string{
	"2A03 Pulse 1", "2A03 Pulse 2", "2A03 Triangle", "2A03 Noise", "2A03 DMC",
	"FDS",
	"MMC5 Pulse 1", "MMC5 Pulse 2", "MMC5 PCM",
	"N163 1", "N163 2", "N163 3", "N163 4", "N163 5", "N163 6", "N163 7", "N163 8",
	"VRC6 Pulse 1", "VRC6 Pulse 2", "VRC6 Saw",
	"VRC7 1", "VRC7 2", "VRC7 3", "VRC7 4", "VRC7 5", "VRC7 6",
	"5B A", "5B B", "5B C",
}

// ChannelName names a mask slot, starting with 2A03 Pulse 1 = 0.
func ChannelName(slot int) string {
	if slot >= 0 && slot < len(channelNames) {
		return channelNames[slot]
	}
	return fmt.Sprintf("Channel %d", slot)
}
