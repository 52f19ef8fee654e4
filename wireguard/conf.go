package wireguard

import (
	"io"
	"strings"
)

const peerHeader = "[Peer]"

// ConfFile is a parsed wg-quick configuration: the global section followed
// by zero or more peer sections. Only whole peer sections are ever added
// or removed; the global section and every untouched peer section are
// written back exactly as read.
type ConfFile struct {
	global []string
	peers  []peerSection
}

// peerSection keeps the blank separator lines preceding its header so that
// excising the section removes exactly what inserting it added.
type peerSection struct {
	lead  []string
	lines []string
}

func ParseConf(r io.Reader) (*ConfFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSuffix(string(data), "\n")
	c := &ConfFile{}
	var blanks []string
	appendLine := func(line string) {
		if len(c.peers) == 0 {
			c.global = append(c.global, line)
		} else {
			last := &c.peers[len(c.peers)-1]
			last.lines = append(last.lines, line)
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			blanks = append(blanks, line)
			continue
		}
		if strings.TrimSpace(line) == peerHeader {
			c.peers = append(c.peers, peerSection{lead: blanks, lines: []string{line}})
			blanks = nil
			continue
		}
		for _, b := range blanks {
			appendLine(b)
		}
		blanks = nil
		appendLine(line)
	}
	for _, b := range blanks {
		appendLine(b)
	}
	return c, nil
}

// AppendPeer adds a new peer section at the end, preceded by a blank
// separator line.
func (c *ConfFile) AppendPeer(publicKey, allowedIP string) {
	c.peers = append(c.peers, peerSection{
		lead: []string{""},
		lines: []string{
			peerHeader,
			"PublicKey = " + publicKey,
			"AllowedIPs = " + allowedIP,
		},
	})
}

// RemovePeer excises the section holding the given key. Returns false when
// no section matches.
func (c *ConfFile) RemovePeer(publicKey string) bool {
	for i, p := range c.peers {
		if p.hasKey(publicKey) {
			c.peers = append(c.peers[:i], c.peers[i+1:]...)
			return true
		}
	}
	return false
}

// HasPeer reports whether a section with the given key exists.
func (c *ConfFile) HasPeer(publicKey string) bool {
	for _, p := range c.peers {
		if p.hasKey(publicKey) {
			return true
		}
	}
	return false
}

func (p peerSection) hasKey(publicKey string) bool {
	for _, line := range p.lines {
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(k) == "PublicKey" && strings.TrimSpace(v) == publicKey {
			return true
		}
	}
	return false
}

func (c *ConfFile) Write(w io.Writer) error {
	lines := append([]string{}, c.global...)
	for _, p := range c.peers {
		lines = append(lines, p.lead...)
		lines = append(lines, p.lines...)
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
