package scanner

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// ReadPcapCandidates reads a packet capture (for example masscan --pcap) and
// returns the sender of every TCP SYN-ACK as a candidate, in capture order.
// A SYN-ACK means the remote port accepted the handshake, so it is open.
func ReadPcapCandidates(r io.Reader) ([]Target, error) {
	reader, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid pcap header: %w", err)
	}

	var targets []Target
	for {
		data, _, err := reader.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("failed to read packet: %w", err)
		}

		packet := gopacket.NewPacket(data, reader.LinkType(), gopacket.NoCopy)
		if target, ok := synAckSource(packet); ok {
			targets = append(targets, target)
		}
	}
	return targets, nil
}

// synAckSource returns the source address/port of a SYN-ACK segment.
func synAckSource(packet gopacket.Packet) (Target, bool) {
	tcp, ok := packet.Layer(layers.LayerTypeTCP).(*layers.TCP)
	if !ok || !tcp.SYN || !tcp.ACK || tcp.RST {
		return Target{}, false
	}

	var src net.IP
	switch ip := packet.NetworkLayer().(type) {
	case *layers.IPv4:
		src = ip.SrcIP
	case *layers.IPv6:
		src = ip.SrcIP
	default:
		return Target{}, false
	}

	return Target{Address: src.String(), Port: int(tcp.SrcPort)}, true
}
