package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tabletop/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Teardown()

			if err := s.StartImports(); err != nil {
				return fmt.Errorf("start import queue: %w", err)
			}

			router := chi.NewRouter()
			handler := web.New(s, scs.NewCookieManager(s.Config.CookieKey))
			handler.Mount(router)

			server := &http.Server{
				Addr:              fmt.Sprintf(":%d", s.Config.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdown); err != nil {
					log.Error().Err(err).Msg("failed to shut down server")
				}
			}()

			log.Info().Uint16("port", s.Config.Port).Str("api", s.Config.ApiUrl.String()).Msg("started server")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}
}
