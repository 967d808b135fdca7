package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"devevents/config"
	"devevents/internal/domain"
	"devevents/internal/services"
)

var (
	bookingsEvent string
	bookingsEmail string
)

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "Inspect bookings",
}

var bookingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookings for an event or an email",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := config.NewLoggerTo(cmd.ErrOrStderr())
		st, err := openStore(cmd.Context(), cfg, logger, false)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := services.NewBookingService(logger, st.events, st.bookings, nil)
		var bookings []*domain.Booking
		if bookingsEvent != "" {
			bookings, err = svc.ListEventBookings(cmd.Context(), bookingsEvent)
		} else {
			bookings, err = svc.ListBookingsByEmail(cmd.Context(), bookingsEmail)
		}
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), bookings, isTerminal(cmd.OutOrStdout()))
	},
}

func init() {
	bookingsListCmd.Flags().StringVar(&bookingsEvent, "event", "", "event slug")
	bookingsListCmd.Flags().StringVar(&bookingsEmail, "email", "", "attendee email")
	bookingsListCmd.MarkFlagsMutuallyExclusive("event", "email")
	bookingsListCmd.MarkFlagsOneRequired("event", "email")
	bookingsCmd.AddCommand(bookingsListCmd)
}

// writeJSON encodes v to w, indented when a person is reading.
func writeJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
