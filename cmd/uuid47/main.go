package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/paraglidehq/uuid47"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "uuid47",
		Short: "Mint v7 UUIDs and convert them to and from keyed v4 facades",
		Long: "uuid47 mints time-ordered version 7 UUIDs and converts them to and from\n" +
			"version 4 facades under a 128-bit key. The key is taken from --key or,\n" +
			"if unset, from the UUID47_KEY environment variable.",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("key", "", "facade key as 32 hex characters (default $UUID47_KEY)")

	// keygen
	keygenCmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate or derive a facade key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fromPassphrase, _ := cmd.Flags().GetBool("passphrase")
			salt, _ := cmd.Flags().GetString("salt")

			var key uuid47.Key
			var err error
			if fromPassphrase {
				secret, rerr := io.ReadAll(os.Stdin)
				if rerr != nil {
					return fmt.Errorf("read passphrase: %w", rerr)
				}
				secret = bytes.TrimSpace(secret)
				if len(secret) == 0 {
					return errors.New("empty passphrase on stdin")
				}
				var saltBytes []byte
				if salt != "" {
					saltBytes = []byte(salt)
				}
				key, err = uuid47.DeriveKey(secret, saltBytes)
			} else {
				key, err = uuid47.GenerateKey()
			}
			if err != nil {
				return err
			}
			fmt.Println(key.Hex())
			return nil
		},
	}
	keygenCmd.Flags().Bool("passphrase", false, "derive the key from a passphrase read on stdin instead of random bytes")
	keygenCmd.Flags().String("salt", "", "salt for --passphrase derivation")
	rootCmd.AddCommand(keygenCmd)

	// new
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Mint version 7 UUIDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, _ := cmd.Flags().GetInt("count")
			if n < 1 {
				return fmt.Errorf("invalid --count %d", n)
			}
			withFacade, _ := cmd.Flags().GetBool("facade")

			var codec uuid47.Codec
			if withFacade {
				var err error
				codec, err = codecFromFlags(cmd)
				if err != nil {
					return err
				}
			}
			for i := 0; i < n; i++ {
				u := uuid47.New()
				if !withFacade {
					fmt.Println(u)
					continue
				}
				f, err := codec.Encode(u)
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%s\n", u, f)
			}
			return nil
		},
	}
	newCmd.Flags().IntP("count", "n", 1, "number of UUIDs to mint")
	newCmd.Flags().Bool("facade", false, "also print the keyed facade after each UUID (requires a key)")
	rootCmd.AddCommand(newCmd)

	// encode
	encodeCmd := &cobra.Command{
		Use:   "encode <uuid>...",
		Short: "Convert version 7 UUIDs to their facades",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := codecFromFlags(cmd)
			if err != nil {
				return err
			}
			for _, arg := range args {
				out, err := codec.EncodeString(arg)
				if err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
				fmt.Println(out)
			}
			return nil
		},
	}
	rootCmd.AddCommand(encodeCmd)

	// decode
	decodeCmd := &cobra.Command{
		Use:   "decode <uuid>...",
		Short: "Recover version 7 UUIDs from their facades",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := codecFromFlags(cmd)
			if err != nil {
				return err
			}
			for _, arg := range args {
				out, err := codec.DecodeString(arg)
				if err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
				fmt.Println(out)
			}
			return nil
		},
	}
	rootCmd.AddCommand(decodeCmd)

	// inspect
	inspectCmd := &cobra.Command{
		Use:   "inspect <uuid>...",
		Short: "Show version, variant and timestamp of UUIDs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				u, err := uuid47.Parse(arg)
				if err != nil {
					return err
				}
				if u.Version() == 7 {
					fmt.Printf("%s\tversion=%d variant=%d time=%s\n",
						u, u.Version(), u.Variant(), u.Timestamp().UTC().Format(time.RFC3339Nano))
				} else {
					fmt.Printf("%s\tversion=%d variant=%d\n", u, u.Version(), u.Variant())
				}
			}
			return nil
		},
	}
	rootCmd.AddCommand(inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// codecFromFlags builds a Codec from --key, falling back to UUID47_KEY.
func codecFromFlags(cmd *cobra.Command) (uuid47.Codec, error) {
	s, _ := cmd.Flags().GetString("key")
	if s == "" {
		s = os.Getenv("UUID47_KEY")
	}
	if s == "" {
		return uuid47.Codec{}, errors.New("no key: pass --key or set UUID47_KEY")
	}
	key, err := uuid47.ParseKey(s)
	if err != nil {
		return uuid47.Codec{}, err
	}
	return uuid47.NewCodec(key), nil
}
