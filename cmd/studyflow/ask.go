package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/BaSui01/studyflow/tutor"
	"github.com/BaSui01/studyflow/types"
)

// =============================================================================
// 💬 ask 命令
// =============================================================================

// askOptions ask 子命令参数
type askOptions struct {
	configPath string
	subject    string
	agent      string
	input      string
	imageFile  string
}

func parseAskFlags(args []string, stderr io.Writer) (askOptions, error) {
	var opts askOptions
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "Path to config file")
	fs.StringVar(&opts.subject, "subject", "", "Subject of the question")
	fs.StringVar(&opts.agent, "agent", string(tutor.AgentSpeed), "Agent id")
	fs.StringVar(&opts.input, "input", "", "Question text")
	fs.StringVar(&opts.imageFile, "image-file", "", "Optional JPEG image")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.subject == "" {
		return opts, errors.New("--subject is required")
	}
	if opts.input == "" && opts.imageFile == "" {
		return opts, errors.New("--input or --image-file is required")
	}
	return opts, nil
}

// readImage 读取图片并编码为 base64
func readImage(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// runAsk 提交一次任务，返回进程退出码
func runAsk(args []string, stdout, stderr io.Writer) int {
	opts, err := parseAskFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "ask: %v\n", err)
		}
		return flagExit(err)
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ask: %v\n", err)
		return 1
	}
	// 单次命令默认只输出告警，显式设置的级别不受影响；stdout 只留给回答
	if cfg.Log.Level == "info" && os.Getenv("STUDYFLOW_LOG_LEVEL") == "" {
		cfg.Log.Level = "warn"
	}
	cfg.Log.OutputPaths = []string{"stderr"}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(stderr, "ask: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	image, err := readImage(opts.imageFile)
	if err != nil {
		fmt.Fprintf(stderr, "ask: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := buildComponents(ctx, cfg, nil, nil, logger)
	if err != nil {
		fmt.Fprintf(stderr, "ask: %v\n", err)
		return 1
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("close components", zap.Error(err))
		}
	}()

	text, err := deps.service.ProcessTask(ctx, opts.subject, tutor.ParseAgentID(opts.agent), opts.input, image)
	if err != nil {
		fmt.Fprintf(stderr, "ask: %s\n", describeError(err))
		return 1
	}

	fmt.Fprintln(stdout, text)
	return 0
}

// describeError 给终端用户的错误说明
func describeError(err error) string {
	switch types.GetErrorCode(err) {
	case types.ErrRateLimited:
		return types.OverloadedMessage
	case types.ErrConfigurationMissing:
		return "model credential is not configured (set STUDYFLOW_LLM_API_KEY or GEMINI_API_KEY)"
	default:
		return err.Error()
	}
}
