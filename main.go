package main

import (
	"context"
	"flag"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/insane-snake/api"
	"github.com/hoshinonyaruko/insane-snake/config"
	"github.com/hoshinonyaruko/insane-snake/game"
	"github.com/hoshinonyaruko/insane-snake/memimg"
	"github.com/hoshinonyaruko/insane-snake/render"
	"github.com/hoshinonyaruko/insane-snake/sched"
	"github.com/hoshinonyaruko/insane-snake/term"
)

func main() {
	configPath := flag.String("config", "./config.json", "path to the JSON config file")
	tui := flag.Bool("tui", false, "play in the terminal instead of logging to stdout")
	flag.Parse()

	// Initialize the configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	EnsureFoldersExist(cfg.FoodsDir, cfg.StaticDir)

	settings := cfg.Settings()
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 加载食物图标，并检测热更新
	sprites := memimg.NewStore(cfg.FoodsDir,
		int(math.Round(settings.FoodWidth*float64(settings.CellSize))),
		int(math.Round(settings.FoodHeight*float64(settings.CellSize))))
	if err := sprites.Load(); err != nil {
		log.Printf("Failed to load food sprites, drawing plain shapes: %v", err)
	}
	if err := sprites.Watch(ctx); err != nil {
		log.Printf("Sprite hot reload disabled: %v", err)
	}

	loop := sched.NewLoop(256)
	ctrl, err := game.New(settings, loop, rand.New(rand.NewSource(seed)))
	if err != nil {
		log.Fatalf("Invalid game settings: %v", err)
	}

	srv := api.New(loop, ctrl, render.New(sprites), cfg.StaticDir, cfg.SelfPath)
	ctrl.Subscribe(srv.Broadcast)

	var frontend *term.Frontend
	var screen tcell.Screen
	if *tui {
		screen, err = tcell.NewScreen()
		if err != nil {
			log.Fatalf("Failed to open terminal: %v", err)
		}
		if err := screen.Init(); err != nil {
			log.Fatalf("Failed to init terminal: %v", err)
		}
		// 终端模式下日志会破坏画面
		log.SetOutput(io.Discard)
		gin.DefaultWriter = io.Discard
		frontend = term.New(screen, loop, ctrl)
		ctrl.Subscribe(frontend.Push)
	}

	go func() {
		if err := loop.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("game loop stopped: %v", err)
		}
	}()
	loop.Post(ctrl.Start)

	if !*tui {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	srv.Register(router)
	httpServer := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server: %v", err)
		}
	}()
	log.Printf("listening on :%s, game %dx%d", cfg.Port, settings.Width, settings.Height)

	if frontend != nil {
		if err := frontend.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("terminal: %v", err)
		}
		screen.Fini()
		stop()
	} else {
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	loop.Do(shutdownCtx, ctrl.Stop)
	loop.Close()
	httpServer.Shutdown(shutdownCtx)
}

// EnsureFoldersExist 检查并创建必需的文件夹
func EnsureFoldersExist(folders ...string) {
	for _, folder := range folders {
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			err := os.MkdirAll(folder, 0755)
			if err != nil {
				log.Fatalf("Failed to create %s directory: %s", folder, err)
			}
			log.Printf("Created %s directory", folder)
		}
	}
}
