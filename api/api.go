// Package api exposes the game over HTTP. Handlers never touch the controller
// from the request goroutine: everything runs through the game loop.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/insane-snake/game"
	"github.com/hoshinonyaruko/insane-snake/render"
	"github.com/hoshinonyaruko/insane-snake/structs"
)

// Runner executes closures on the game loop. *sched.Loop satisfies it.
type Runner interface {
	Do(ctx context.Context, fn func()) error
	Post(fn func()) bool
}

// Server holds the HTTP handlers and the websocket hub.
type Server struct {
	loop      Runner
	ctrl      *game.Controller
	renderer  *render.Renderer
	staticDir string
	selfPath  string
	hub       *Hub
}

// New creates the handlers. Subscribe Broadcast to the controller so websocket
// clients receive frames.
func New(loop Runner, ctrl *game.Controller, renderer *render.Renderer, staticDir, selfPath string) *Server {
	s := &Server{
		loop:      loop,
		ctrl:      ctrl,
		renderer:  renderer,
		staticDir: staticDir,
		selfPath:  selfPath,
	}
	s.hub = newHub(s)
	return s
}

// Register mounts every route on r.
func (s *Server) Register(r *gin.Engine) {
	// 当前状态
	r.GET("/state", s.State)
	// 处理玩家改变方向
	r.GET("/update-direction", s.UpdateDirection)
	r.GET("/restart", s.Restart)
	// 渲染函数 返回静态地址
	r.GET("/render-frame", s.RenderFrame)
	r.GET("/ws", s.hub.Serve)
	r.Static("/static", s.staticDir) // 静态文件服务
}

// Broadcast pushes a snapshot to websocket clients without blocking.
func (s *Server) Broadcast(snap structs.Snapshot) {
	s.hub.Broadcast(snap)
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

func (s *Server) snapshot(ctx context.Context) (structs.Snapshot, error) {
	var snap structs.Snapshot
	err := s.loop.Do(ctx, func() {
		snap = s.ctrl.Snapshot()
	})
	return snap, err
}

func unavailable(c *gin.Context, err error) {
	log.Printf("game loop: %v", err)
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Game loop unavailable"})
}

func (s *Server) State(c *gin.Context) {
	snap, err := s.snapshot(c.Request.Context())
	if err != nil {
		unavailable(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// UpdateDirection steers the snake. While the game is over the request is the
// restart signal instead.
func (s *Server) UpdateDirection(c *gin.Context) {
	newDirection := c.Query("direction")
	if newDirection == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: direction"})
		return
	}
	d, err := structs.ParseDirection(newDirection)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var (
		accepted  bool
		restarted bool
		state     structs.State
	)
	err = s.loop.Do(c.Request.Context(), func() {
		if s.ctrl.State() == structs.GameOver {
			s.ctrl.Input(structs.InputFor(d))
			restarted = true
		} else {
			accepted = s.ctrl.Turn(d)
		}
		state = s.ctrl.State()
	})
	if err != nil {
		unavailable(c, err)
		return
	}

	if restarted {
		c.JSON(http.StatusOK, gin.H{"message": "Game restarted", "state": state})
		return
	}
	if !accepted {
		c.JSON(http.StatusOK, gin.H{"message": "Direction change ignored", "accepted": false, "state": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Direction updated successfully", "accepted": true, "state": state})
}

func (s *Server) Restart(c *gin.Context) {
	var ok bool
	if err := s.loop.Do(c.Request.Context(), func() { ok = s.ctrl.Restart() }); err != nil {
		unavailable(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "Game is still running"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game restarted"})
}

// RenderFrame draws the current snapshot to static/frame.png and returns its URL.
func (s *Server) RenderFrame(c *gin.Context) {
	snap, err := s.snapshot(c.Request.Context())
	if err != nil {
		unavailable(c, err)
		return
	}

	// 绘图在请求协程完成，不占用游戏循环
	fileName := filepath.Join(s.staticDir, "frame.png")
	if err := s.renderer.SavePNG(snap, fileName); err != nil {
		log.Printf("render frame: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to render frame"})
		return
	}

	imageUrl := fmt.Sprintf("http://%s/static/frame.png", s.selfPath)
	c.JSON(http.StatusOK, gin.H{"image_url": imageUrl, "tick": snap.Tick})
}
