package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Run from a directory without a config file so defaults apply.
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Env != "local" {
		t.Fatalf("expected default env local, got %q", cfg.Env)
	}
	if cfg.StoragePath != "animal-quiz.db" {
		t.Fatalf("unexpected storage path %q", cfg.StoragePath)
	}
	if cfg.QuestionsPath != "assets/questions.json" {
		t.Fatalf("unexpected questions path %q", cfg.QuestionsPath)
	}
	if cfg.AutoSaveInterval != 5*time.Second {
		t.Fatalf("unexpected auto-save interval %v", cfg.AutoSaveInterval)
	}
	if cfg.QuestionTimer != 30*time.Second {
		t.Fatalf("unexpected question timer %v", cfg.QuestionTimer)
	}
	if cfg.StorageLimitBytes != 5<<20 {
		t.Fatalf("unexpected storage limit %d", cfg.StorageLimitBytes)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("ANIMAL_QUIZ_ENV", "production")
	t.Setenv("ANIMAL_QUIZ_QUESTION_TIMER", "45s")
	t.Setenv("ANIMAL_QUIZ_STORAGE_PATH", "/tmp/quiz-test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Env != "production" {
		t.Fatalf("env override ignored, got %q", cfg.Env)
	}
	if cfg.QuestionTimer != 45*time.Second {
		t.Fatalf("timer override ignored, got %v", cfg.QuestionTimer)
	}
	if cfg.StoragePath != "/tmp/quiz-test.db" {
		t.Fatalf("storage path override ignored, got %q", cfg.StoragePath)
	}
}
