package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/BurntRouter/uvarint-go/codec"
	"github.com/BurntRouter/uvarint-go/uvarint"
	"github.com/spf13/cobra"
)

func encodeCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "encode N...",
		Short: "Print the varint encoding of each number in hex",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, a := range args {
				b, err := encodeValue(a, width)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatHex(b))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 64, "integer width: 8, 16, 32, 64 or 128")
	return cmd
}

func decodeCmd() *cobra.Command {
	var width int
	cmd := &cobra.Command{
		Use:   "decode HEX",
		Short: "Decode a hex encoded varint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := hex.DecodeString(strings.Join(strings.Fields(args[0]), ""))
			if err != nil {
				return err
			}
			v, rest, err := decodeValue(in, width)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			if len(rest) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "rest: %s\n", formatHex(rest))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&width, "width", "w", 64, "integer width: 8, 16, 32, 64 or 128")
	return cmd
}

func encodeValue(s string, width int) ([]byte, error) {
	if width == 128 {
		n, ok := new(big.Int).SetString(s, 0)
		if !ok || n.Sign() < 0 || n.BitLen() > 128 {
			return nil, fmt.Errorf("invalid 128-bit value %q", s)
		}
		lo := new(big.Int).And(n, new(big.Int).SetUint64(^uint64(0))).Uint64()
		hi := new(big.Int).Rsh(n, 64).Uint64()
		var buf [uvarint.Uint128Len]byte
		return uvarint.EncodeUint128(uvarint.Uint128{Hi: hi, Lo: lo}, &buf), nil
	}
	v, err := strconv.ParseUint(s, 0, width)
	if err != nil {
		return nil, err
	}
	switch width {
	case 8:
		var buf [uvarint.Uint8Len]byte
		return uvarint.EncodeUint8(uint8(v), &buf), nil
	case 16:
		var buf [uvarint.Uint16Len]byte
		return uvarint.EncodeUint16(uint16(v), &buf), nil
	case 32:
		var buf [uvarint.Uint32Len]byte
		return uvarint.EncodeUint32(uint32(v), &buf), nil
	case 64:
		var buf [uvarint.Uint64Len]byte
		return uvarint.EncodeUint64(v, &buf), nil
	}
	return nil, fmt.Errorf("unsupported width %d", width)
}

func decodeValue(in []byte, width int) (fmt.Stringer, []byte, error) {
	switch width {
	case 8:
		v, rest, err := uvarint.DecodeUint8(in)
		return number(v), rest, err
	case 16:
		v, rest, err := uvarint.DecodeUint16(in)
		return number(v), rest, err
	case 32:
		v, rest, err := uvarint.DecodeUint32(in)
		return number(v), rest, err
	case 64:
		v, rest, err := uvarint.DecodeUint64(in)
		return number(v), rest, err
	case 128:
		return uvarint.DecodeUint128(in)
	}
	return nil, nil, fmt.Errorf("unsupported width %d", width)
}

type number uint64

func (n number) String() string { return strconv.FormatUint(uint64(n), 10) }

func formatHex(b []byte) string { return fmt.Sprintf("% x", b) }

func frameCmd() *cobra.Command {
	var max int
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Write stdin as a single length-prefixed frame to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			f := codec.NewFramer()
			if max > 0 {
				f.SetMaxLen(max)
			}
			var out bytes.Buffer
			if err := f.Encode(payload, &out); err != nil {
				return err
			}
			_, err = out.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().IntVar(&max, "max", 0, "maximum payload length (0 = unbounded)")
	return cmd
}

func unframeCmd() *cobra.Command {
	var max int
	cmd := &cobra.Command{
		Use:   "unframe",
		Short: "Read length-prefixed frames from stdin and write their payloads to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := codec.NewFramer()
			if max > 0 {
				f.SetMaxLen(max)
			}
			return unframe(cmd.InOrStdin(), cmd.OutOrStdout(), f)
		},
	}
	cmd.Flags().IntVar(&max, "max", 0, "maximum payload length (0 = unbounded)")
	return cmd
}

// unframe feeds r through f as it arrives and writes each payload to w.
func unframe(r io.Reader, w io.Writer, f *codec.Framer) error {
	bw := bufio.NewWriter(w)
	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		n, rerr := r.Read(chunk)
		buf.Write(chunk[:n])
		for {
			p, err := f.Decode(&buf)
			if err != nil {
				return err
			}
			if p == nil {
				break
			}
			if _, err := bw.Write(p); err != nil {
				return err
			}
		}
		if rerr != nil {
			if !errors.Is(rerr, io.EOF) {
				return rerr
			}
			if buf.Len() > 0 || f.Pending() {
				return fmt.Errorf("truncated frame at end of input")
			}
			return bw.Flush()
		}
	}
}
