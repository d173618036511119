// Package app 组装依赖并运行 http 服务
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gowvp/owlview/internal/conf"
)

// Run 阻塞运行，收到退出信号后优雅关闭
func Run(bc *conf.Bootstrap) error {
	log, clean, err := SetupLog(bc)
	if err != nil {
		return err
	}
	defer clean()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := wireApp(bc)
	if err != nil {
		slog.Error("wire app", "err", err)
		return err
	}
	defer cleanup()

	timeout := bc.Server.HTTP.Timeout.Duration()
	svr := http.Server{
		Addr:              fmt.Sprintf(":%d", bc.Server.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		// 长轮询需要比读超时更长的写超时
		WriteTimeout: max(timeout, time.Minute),
	}
	go func() {
		slog.Info("http server start", "port", bc.Server.HTTP.Port, "version", bc.BuildVersion)
		if err := svr.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return svr.Shutdown(shutdownCtx)
}
