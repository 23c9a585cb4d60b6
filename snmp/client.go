package snmp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/eddielth/check-sensorprobe/config"
	"github.com/eddielth/check-sensorprobe/logger"
	"github.com/eddielth/check-sensorprobe/probe"
)

// StatusError is an error-status returned by the agent in a response PDU.
type StatusError struct {
	Status gosnmp.SNMPError
	Index  int
	OID    string
}

func (e *StatusError) Error() string {
	oid := e.OID
	if oid == "" {
		oid = "?"
	}
	return fmt.Sprintf("%s at %s", statusName(e.Status), oid)
}

var statusNames = map[gosnmp.SNMPError]string{
	gosnmp.TooBig:              "tooBig",
	gosnmp.NoSuchName:          "noSuchName",
	gosnmp.BadValue:            "badValue",
	gosnmp.ReadOnly:            "readOnly",
	gosnmp.GenErr:              "genErr",
	gosnmp.NoAccess:            "noAccess",
	gosnmp.WrongType:           "wrongType",
	gosnmp.WrongLength:         "wrongLength",
	gosnmp.WrongEncoding:       "wrongEncoding",
	gosnmp.WrongValue:          "wrongValue",
	gosnmp.NoCreation:          "noCreation",
	gosnmp.InconsistentValue:   "inconsistentValue",
	gosnmp.ResourceUnavailable: "resourceUnavailable",
	gosnmp.CommitFailed:        "commitFailed",
	gosnmp.UndoFailed:          "undoFailed",
	gosnmp.AuthorizationError:  "authorizationError",
	gosnmp.NotWritable:         "notWritable",
	gosnmp.InconsistentName:    "inconsistentName",
}

func statusName(s gosnmp.SNMPError) string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("errorStatus(%d)", uint8(s))
}

// requester is the part of gosnmp the walk needs.
type requester interface {
	GetNext(oids []string) (*gosnmp.SnmpPacket, error)
}

// Client walks the sensor tables of one agent over a single session.
type Client struct {
	conn   *gosnmp.GoSNMP
	config config.ProbeConfig
}

// NewClient creates a read-only community client. No request is retried.
func NewClient(cfg config.ProbeConfig) (*Client, error) {
	if cfg.Hostname == "" {
		return nil, fmt.Errorf("SNMP target address cannot be empty")
	}

	version, err := parseVersion(cfg.Version)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	conn := &gosnmp.GoSNMP{
		Target:             cfg.Hostname,
		Port:               uint16(cfg.SNMPPort),
		Community:          cfg.Community,
		Version:            version,
		Timeout:            timeout,
		Retries:            0,
		ExponentialTimeout: false,
		MaxOids:            gosnmp.MaxOids,
	}

	return &Client{conn: conn, config: cfg}, nil
}

func parseVersion(v string) (gosnmp.SnmpVersion, error) {
	switch strings.TrimSpace(v) {
	case "1":
		return gosnmp.Version1, nil
	case "2c", "":
		return gosnmp.Version2c, nil
	default:
		return 0, fmt.Errorf("unsupported SNMP version %q", v)
	}
}

// Connect opens the UDP socket.
func (c *Client) Connect(ctx context.Context) error {
	c.conn.Context = ctx
	if err := c.conn.Connect(); err != nil {
		return fmt.Errorf("connect to %s:%d: %w", c.config.Hostname, c.config.SNMPPort, err)
	}
	logger.Debug("SNMP session to %s:%d (version %s)", c.config.Hostname, c.config.SNMPPort, c.config.Version)
	return nil
}

// Close closes the socket.
func (c *Client) Close() {
	if c.conn.Conn != nil {
		c.conn.Conn.Close()
	}
}

// Walk reads every variable under root with GetNext requests.
func (c *Client) Walk(ctx context.Context, root string) ([]probe.RawRecord, error) {
	c.conn.Context = ctx
	return walk(ctx, c.conn, root)
}

func walk(ctx context.Context, r requester, root string) ([]probe.RawRecord, error) {
	root = normalizeOID(root)
	var records []probe.RawRecord

	next := root
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pkt, err := r.GetNext([]string{next})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}

		if pkt.Error != gosnmp.NoError {
			// SNMPv1 agents signal the end of the MIB with noSuchName.
			if pkt.Error == gosnmp.NoSuchName && pkt.Version == gosnmp.Version1 {
				break
			}
			se := &StatusError{Status: pkt.Error, Index: int(pkt.ErrorIndex)}
			if i := int(pkt.ErrorIndex); i > 0 && i <= len(pkt.Variables) {
				se.OID = normalizeOID(pkt.Variables[i-1].Name)
			}
			return nil, se
		}

		if len(pkt.Variables) == 0 {
			break
		}

		pdu := pkt.Variables[0]
		switch pdu.Type {
		case gosnmp.EndOfMibView, gosnmp.NoSuchObject, gosnmp.NoSuchInstance:
			return records, nil
		}

		name := normalizeOID(pdu.Name)
		if !inSubtree(name, root) {
			break
		}
		if !oidAfter(name, next) {
			logger.Warn("agent returned %s after %s, stopping walk", name, next)
			break
		}
		next = name

		addr, err := probe.ParseAddress(name)
		if err != nil {
			logger.Debug("ignoring %s: %v", name, err)
			continue
		}
		records = append(records, probe.RawRecord{Address: addr, Value: pduValue(pdu)})
	}

	logger.Debug("walked %s: %d records", root, len(records))
	return records, nil
}

func normalizeOID(oid string) string {
	return strings.TrimPrefix(strings.TrimSpace(oid), ".")
}

func inSubtree(oid, root string) bool {
	return strings.HasPrefix(oid, root+".")
}

// oidAfter reports whether a sorts strictly after b, comparing arcs numerically.
// An arc that does not parse makes the pair unordered.
func oidAfter(a, b string) bool {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		x, err := strconv.ParseUint(as[i], 10, 32)
		if err != nil {
			return false
		}
		y, err := strconv.ParseUint(bs[i], 10, 32)
		if err != nil {
			return false
		}
		if x != y {
			return x > y
		}
	}
	return len(as) > len(bs)
}

// pduValue renders a variable binding as text. Octet strings are kept
// verbatim, numeric types use their decimal form.
func pduValue(pdu gosnmp.SnmpPDU) string {
	switch v := pdu.Value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case nil:
		return ""
	}

	switch pdu.Type {
	case gosnmp.Integer, gosnmp.Counter32, gosnmp.Gauge32, gosnmp.TimeTicks,
		gosnmp.Counter64, gosnmp.Uinteger32:
		return gosnmp.ToBigInt(pdu.Value).String()
	}
	return fmt.Sprintf("%v", pdu.Value)
}
