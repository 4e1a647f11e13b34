// Command microgbt_main is the CLI entrypoint for training and predicting
// with a microGBT model. Grounded on
// golang/extra_boost/extra_boost_main/main.go's flag-based mode dispatch
// and JSON-config-to-struct pattern.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/tarstars/microgbt/golang/microgbt"
	"gonum.org/v1/gonum/mat"
)

func denseFromVector(v []float64) *mat.Dense {
	return mat.NewDense(len(v), 1, v)
}

func decodeConfig(srcConfig string, out interface{}) {
	file, err := os.Open(srcConfig)
	if err != nil {
		log.Fatalf("opening config %s: %v", srcConfig, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(out); err != nil {
		log.Fatalf("decoding config %s: %v", srcConfig, err)
	}
}

// TrainConfig is the JSON shape for "train" mode. Model persistence is a
// non-goal (spec.md §1), so this mode trains and, in the same process,
// predicts against an optional held-out feature matrix — a "train-and-predict"
// mode rather than the teacher's separate train/predict/save/load round
// trip.
type TrainConfig struct {
	TrainXFile          string             `json:"train_x"`
	TrainYFile          string             `json:"train_y"`
	ValidXFile          string             `json:"valid_x"`
	ValidYFile          string             `json:"valid_y"`
	Params              map[string]float64 `json:"params"`
	NumBoostRound       int                `json:"num_boost_round"`
	EarlyStoppingRounds int                `json:"early_stopping_rounds"`

	PredictXFile      string `json:"predict_x,omitempty"`
	PredictionOutFile string `json:"prediction_out,omitempty"`

	GraphPrefix       string `json:"graph_prefix,omitempty"`
	FigureType        string `json:"figure_type,omitempty"`
	PicturesDirectory string `json:"pictures_directory,omitempty"`
}

func train(srcConfig string) {
	var cfg TrainConfig
	decodeConfig(srcConfig, &cfg)

	trainX, err := microgbt.LoadDense(cfg.TrainXFile)
	if err != nil {
		log.Fatal(err)
	}
	trainY, err := microgbt.LoadVector(cfg.TrainYFile)
	if err != nil {
		log.Fatal(err)
	}
	validX, err := microgbt.LoadDense(cfg.ValidXFile)
	if err != nil {
		log.Fatal(err)
	}
	validY, err := microgbt.LoadVector(cfg.ValidYFile)
	if err != nil {
		log.Fatal(err)
	}

	model, err := microgbt.New(cfg.Params)
	if err != nil {
		log.Fatal(err)
	}

	if err := model.Train(trainX, trainY, validX, validY, cfg.NumBoostRound, cfg.EarlyStoppingRounds); err != nil {
		log.Fatal(err)
	}

	log.Printf("best_iteration=%d trees=%d", model.BestIteration(), model.NumTrees())

	if cfg.GraphPrefix != "" {
		if err := model.RenderTrees(cfg.GraphPrefix, cfg.FigureType, cfg.PicturesDirectory); err != nil {
			log.Fatal(err)
		}
	}

	if cfg.PredictXFile == "" {
		return
	}
	predictX, err := microgbt.LoadDense(cfg.PredictXFile)
	if err != nil {
		log.Fatal(err)
	}
	rows, _ := predictX.Dims()
	predictions := make([]float64, rows)
	for i := 0; i < rows; i++ {
		row := predictX.RawRowView(i)
		p, err := model.Predict(row, 0)
		if err != nil {
			log.Fatal(err)
		}
		predictions[i] = p
	}

	if cfg.PredictionOutFile != "" {
		out := denseFromVector(predictions)
		if err := microgbt.DumpDense(cfg.PredictionOutFile, out); err != nil {
			log.Fatal(err)
		}
	}
}

func main() {
	runMode := flag.String("mode", "train", "'train' runs training and, if configured, prediction and graph rendering")
	config := flag.String("config", "microgbt_config.json", "path to the JSON config file for the selected mode")
	flag.Parse()

	modes := map[string]func(string){
		"train": train,
	}
	fn, ok := modes[*runMode]
	if !ok {
		log.Fatalf("unknown mode %q", *runMode)
	}
	fn(*config)
}
