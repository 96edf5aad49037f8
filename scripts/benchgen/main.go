package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/xXemran05khanXx/uniflow/internal/models"
	"github.com/xXemran05khanXx/uniflow/internal/service"
)

type dataset struct {
	Courses  []models.Course  `json:"courses"`
	Teachers []models.Teacher `json:"teachers"`
	Rooms    []models.Room    `json:"rooms"`
}

type run struct {
	Scheduled   int
	Unscheduled int
	Rate        float64
	Quality     float64
	Conflicts   map[models.ConflictType]int
	Duration    time.Duration
}

func main() {
	var (
		datasetPath   string
		days          int
		slotDuration  int
		breakDuration int
		minQuality    float64
		verbose       bool
	)

	flag.StringVar(&datasetPath, "dataset", filepath.Join("scripts", "benchgen", "dataset.json"), "Path to JSON dataset file with courses, teachers and rooms")
	flag.IntVar(&days, "days", 5, "Working days per week")
	flag.IntVar(&slotDuration, "slot", 60, "Slot duration in minutes")
	flag.IntVar(&breakDuration, "break", 10, "Break between slots in minutes")
	flag.Float64Var(&minQuality, "min-quality", 0, "Exit nonzero when quality score falls below this value")
	flag.BoolVar(&verbose, "verbose", false, "Print every placed session and unscheduled reason")
	flag.Parse()

	data, err := loadDataset(datasetPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}

	allDays := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
	if days < 1 {
		days = 1
	}
	if days > len(allDays) {
		days = len(allDays)
	}

	slots := service.BuildTimeSlots(allDays[:days], "08:00", "18:00", slotDuration, breakDuration)
	if len(slots) == 0 {
		log.Fatal("working hours configuration produces no usable time slots")
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("failed to build logger: %v", err)
		}
	}

	start := time.Now()
	scheduler := service.NewGreedyScheduler(0, logger)
	placed, unscheduled, err := scheduler.Schedule(context.Background(), data.Courses, data.Teachers, data.Rooms, slots)
	if err != nil {
		log.Fatalf("generation failed: %v", err)
	}
	elapsed := time.Since(start)

	detector := service.NewClashDetector(service.DefaultClashPolicy(), logger)
	report := detector.Detect(placed, nil)
	rate := service.SchedulingRate(placed, len(data.Courses))
	quality := service.QualityScore(rate, len(report.Conflicts))

	result := run{
		Scheduled:   len(placed),
		Unscheduled: len(unscheduled),
		Rate:        rate,
		Quality:     quality,
		Conflicts:   report.ByType,
		Duration:    elapsed,
	}
	printReport(result, len(slots), len(data.Rooms))

	if verbose {
		for _, entry := range placed {
			fmt.Printf("  %-9s %s-%s  %-8s %-8s room %s\n", entry.Day, entry.StartTime, entry.EndTime, entry.CourseCode, entry.TeacherID, entry.RoomNumber)
		}
		for _, miss := range unscheduled {
			fmt.Printf("  unplaced %s session %d: %s\n", miss.CourseCode, miss.Session, miss.Reason)
		}
	}

	if quality < minQuality {
		fmt.Printf("Quality %.1f below required %.1f\n", quality, minQuality)
		os.Exit(1)
	}
}

func loadDataset(path string) (dataset, error) {
	var data dataset
	raw, err := os.ReadFile(path)
	if err != nil {
		return data, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, err
	}
	if len(data.Courses) == 0 {
		return data, fmt.Errorf("no courses defined in %s", path)
	}
	return data, nil
}

func printReport(result run, slots, rooms int) {
	fmt.Println("Generation Benchmark Report")
	fmt.Println("===========================")
	fmt.Printf("Slot universe: %d slots x %d rooms\n", slots, rooms)
	fmt.Printf("Sessions placed: %d, unplaced: %d\n", result.Scheduled, result.Unscheduled)
	fmt.Printf("Scheduling rate: %.1f%%, quality score: %.1f\n", result.Rate, result.Quality)
	fmt.Printf("Elapsed: %s\n", result.Duration)
	for _, conflictType := range models.ConflictTypes {
		if count := result.Conflicts[conflictType]; count > 0 {
			fmt.Printf("  %s conflicts: %d\n", conflictType, count)
		}
	}
}
