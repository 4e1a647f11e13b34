package microgbt

import (
	"log"
	"runtime"

	"gonum.org/v1/gonum/mat"
)

// Config is the parsed, validated form of the flat hyperparameter map
// GBT.New accepts. Grounded on original_source/src/GBT.h's
// GBT(map<string,double>) constructor and the CLI's JSON-config-to-struct
// pattern in golang/extra_boost/extra_boost_main/main.go.
type Config struct {
	Lambda        float64
	Gamma         float64
	ShrinkageRate float64
	MinSplitGain  float64
	MinTreeSize   int
	LearningRate  float64
	MaxDepth      int
	Metric        int // 0 = LogLoss, 1 = RMSE
	MaxBin        int // 0 means "absent": use ExactGreedySplitter
}

func requireKey(params map[string]float64, key string) (float64, error) {
	v, ok := params[key]
	if !ok {
		return 0, newError(InvalidConfig, "missing required hyperparameter %q", key)
	}
	return v, nil
}

func newConfig(params map[string]float64) (Config, error) {
	var c Config

	lambda, err := requireKey(params, "lambda")
	if err != nil {
		return c, err
	}
	if lambda < 0 {
		return c, newError(InvalidConfig, "lambda must be >= 0, got %v", lambda)
	}

	shrinkage, err := requireKey(params, "shrinkage_rate")
	if err != nil {
		return c, err
	}
	if shrinkage <= 0 || shrinkage > 1 {
		return c, newError(InvalidConfig, "shrinkage_rate must be in (0, 1], got %v", shrinkage)
	}

	minSplitGain, err := requireKey(params, "min_split_gain")
	if err != nil {
		return c, err
	}
	if minSplitGain < 0 {
		return c, newError(InvalidConfig, "min_split_gain must be >= 0, got %v", minSplitGain)
	}

	minTreeSizeF, err := requireKey(params, "min_tree_size")
	if err != nil {
		return c, err
	}
	minTreeSize := int(minTreeSizeF)
	if minTreeSize < 1 {
		return c, newError(InvalidConfig, "min_tree_size must be >= 1, got %v", minTreeSizeF)
	}

	learningRate, err := requireKey(params, "learning_rate")
	if err != nil {
		return c, err
	}

	maxDepthF, err := requireKey(params, "max_depth")
	if err != nil {
		return c, err
	}
	maxDepth := int(maxDepthF)
	if maxDepth < 1 {
		return c, newError(InvalidConfig, "max_depth must be >= 1, got %v", maxDepthF)
	}

	metricF, err := requireKey(params, "metric")
	if err != nil {
		return c, err
	}
	metric := int(metricF)
	if metric != 0 && metric != 1 {
		return c, newError(InvalidConfig, "metric must be 0 (LogLoss) or 1 (RMSE), got %v", metricF)
	}

	// gamma is reserved (spec.md §9): accepted, defaulted, never
	// subtracted from gain.
	gamma := params["gamma"]

	maxBin := 0
	if v, ok := params["max_bin"]; ok {
		maxBin = int(v)
		if maxBin < 2 {
			return c, newError(InvalidConfig, "max_bin must be >= 2 when set, got %v", v)
		}
	}

	c = Config{
		Lambda:        lambda,
		Gamma:         gamma,
		ShrinkageRate: shrinkage,
		MinSplitGain:  minSplitGain,
		MinTreeSize:   minTreeSize,
		LearningRate:  learningRate,
		MaxDepth:      maxDepth,
		Metric:        metric,
		MaxBin:        maxBin,
	}
	return c, nil
}

func (c Config) metricImpl() Metric {
	if c.Metric == 1 {
		return RMSE{}
	}
	return LogLoss{}
}

func (c Config) splitter(workers int) Splitter {
	if c.MaxBin > 0 {
		return NewHistogramSplitter(c.Lambda, c.MaxBin)
	}
	return NewExactGreedySplitter(c.Lambda, workers)
}

// GBT is the boosting model: an ordered list of Trees, a Metric, and the
// hyperparameters that produced them. Grounded on original_source/src/GBT.h
// and golang/poisson_legacy/booster.go's plain-error Train/Predict shape.
type GBT struct {
	config Config
	metric Metric
	trees  []*Tree

	bestIteration int
	learningRate  float64

	strategy BuildStrategy
	workers  int
	logger   *log.Logger
}

// GBTOption configures peripheral behaviour GBT.New doesn't read from the
// hyperparameter map: logging destination, build strategy, and worker
// fan-out. spec.md keeps these out of the embedding API's `params` map, so
// they are threaded through functional options instead.
type GBTOption func(*GBT)

// WithLogger overrides the *log.Logger GBT.Train reports progress through.
func WithLogger(logger *log.Logger) GBTOption {
	return func(g *GBT) { g.logger = logger }
}

// WithBuildStrategy selects the recursive (default) or BFS/ClassList tree
// builder (spec.md §4.6 offers both as equivalent alternatives).
func WithBuildStrategy(strategy BuildStrategy) GBTOption {
	return func(g *GBT) { g.strategy = strategy }
}

// WithWorkers bounds the goroutine fan-out used for split search and
// dataset scoring. Defaults to runtime.GOMAXPROCS(0).
func WithWorkers(workers int) GBTOption {
	return func(g *GBT) { g.workers = workers }
}

// New builds a GBT from the flat hyperparameter map spec.md §6 describes.
func New(params map[string]float64, opts ...GBTOption) (*GBT, error) {
	config, err := newConfig(params)
	if err != nil {
		return nil, err
	}

	g := &GBT{
		config:       config,
		metric:       config.metricImpl(),
		learningRate: config.ShrinkageRate,
		strategy:     BuildStrategyRecursive,
		workers:      runtime.GOMAXPROCS(0),
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func validateTrainingShapes(trainX *mat.Dense, trainY []float64, validX *mat.Dense, validY []float64) error {
	tr, tc := trainX.Dims()
	if tr != len(trainY) {
		return newError(InvalidShape, "train_X has %d rows but train_y has %d entries", tr, len(trainY))
	}
	if tr < 2 {
		return newError(DegenerateDataset, "training set has %d rows, need at least 2", tr)
	}
	vr, vc := validX.Dims()
	if vr != len(validY) {
		return newError(InvalidShape, "valid_X has %d rows but valid_y has %d entries", vr, len(validY))
	}
	if vc != tc {
		return newError(InvalidShape, "train_X has %d features but valid_X has %d", tc, vc)
	}
	return nil
}

// Train runs the boosting loop of spec.md §4.8: recompute predictions,
// derive (gradient, Hessian), grow one tree, apply shrinkage decay, track
// validation loss, and stop early when it stalls.
func (g *GBT) Train(trainX *mat.Dense, trainY []float64, validX *mat.Dense, validY []float64, numBoostRound, earlyStoppingRounds int) error {
	if err := validateTrainingShapes(trainX, trainY, validX, validY); err != nil {
		return err
	}

	trainSet, err := NewDataset(trainX, trainY)
	if err != nil {
		return err
	}

	splitter := g.config.splitter(g.workers)
	params := treeParams{
		lambda:       g.config.Lambda,
		minSplitGain: g.config.MinSplitGain,
		minTreeSize:  g.config.MinTreeSize,
		maxDepth:     g.config.MaxDepth,
		splitter:     splitter,
	}

	g.bestIteration = -1
	bestValidLoss := 0.0
	haveBest := false

	for t := 0; t < numBoostRound; t++ {
		sTrain := g.rawScoresDataset(trainSet)
		pTrain := scoreToPredictions(g.metric, sTrain)

		grad, err := g.metric.Gradients(pTrain, trainY)
		if err != nil {
			return err
		}
		hess := g.metric.Hessian(pTrain)

		tree, err := buildTree(trainSet, grad, hess, params, g.learningRate, g.strategy)
		if err != nil {
			return err
		}
		g.trees = append(g.trees, tree)
		g.learningRate *= g.config.LearningRate

		trainLoss, err := g.metric.Loss(scoreToPredictions(g.metric, g.rawScoresDataset(trainSet)), trainY)
		if err != nil {
			return err
		}
		pValid := scoreToPredictions(g.metric, g.rawScoresMatrix(validX))
		validLoss, err := g.metric.Loss(pValid, validY)
		if err != nil {
			return err
		}

		g.logger.Printf("[iteration %d] train=%.6f valid=%.6f", t, trainLoss, validLoss)

		if !haveBest || validLoss < bestValidLoss {
			haveBest = true
			bestValidLoss = validLoss
			g.bestIteration = t
		}
		if t-g.bestIteration >= earlyStoppingRounds {
			break
		}
	}

	return nil
}

// rawScoresDataset sums every tree's contribution for each row of dataset.
func (g *GBT) rawScoresDataset(dataset *Dataset) []float64 {
	n := dataset.NRows()
	out := make([]float64, n)
	parallelFor(n, g.workers, func(i int) {
		out[i] = g.rawScore(dataset.Row(i), 0)
	})
	return out
}

// rawScoresMatrix sums every tree's contribution for each row of a raw
// *mat.Dense (used for the validation set, which is never partitioned by a
// split so it needs no Dataset wrapper).
func (g *GBT) rawScoresMatrix(x *mat.Dense) []float64 {
	rows, _ := x.Dims()
	out := make([]float64, rows)
	parallelFor(rows, g.workers, func(i int) {
		out[i] = g.rawScore(mat.Row(nil, i, x), 0)
	})
	return out
}

// rawScore sums the first k' tree scores for one sample, where k' = k if
// k > 0 else len(trees) (spec.md §4.8's prediction truncation rule).
func (g *GBT) rawScore(x []float64, k int) float64 {
	upto := k
	if upto <= 0 || upto > len(g.trees) {
		upto = len(g.trees)
	}
	sum := 0.0
	for u := 0; u < upto; u++ {
		sum += g.trees[u].Score(x)
	}
	return sum
}

func scoreToPredictions(metric Metric, scores []float64) []float64 {
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = metric.ScoreToPrediction(s)
	}
	return out
}

// Predict returns score_to_prediction(sum of the first numIterations tree
// scores); numIterations <= 0 means "all trees" (spec.md §4.8, §6).
func (g *GBT) Predict(x []float64, numIterations int) (float64, error) {
	if len(g.trees) == 0 {
		return 0, newError(InvalidConfig, "model has not been trained")
	}
	return g.metric.ScoreToPrediction(g.rawScore(x, numIterations)), nil
}

// BestIteration returns the boosting iteration with the lowest observed
// validation loss.
func (g *GBT) BestIteration() int { return g.bestIteration }

// MaxDepth returns the configured maximum tree depth.
func (g *GBT) MaxDepth() int { return g.config.MaxDepth }

// LearningRate returns the configured per-iteration shrinkage decay factor.
func (g *GBT) LearningRate() float64 { return g.config.LearningRate }

// Lambda returns the configured L2 leaf-weight regularisation constant.
func (g *GBT) Lambda() float64 { return g.config.Lambda }

// MinSplitGain returns the configured minimum accepted split gain.
func (g *GBT) MinSplitGain() float64 { return g.config.MinSplitGain }

// ShrinkageRate returns the configured initial per-tree learning rate.
func (g *GBT) ShrinkageRate() float64 { return g.config.ShrinkageRate }

// MaxBin returns the configured histogram bin count, or 0 if the exact
// greedy splitter is in use.
func (g *GBT) MaxBin() int { return g.config.MaxBin }

// NumTrees returns the number of trees actually built (<= numBoostRound if
// training stopped early).
func (g *GBT) NumTrees() int { return len(g.trees) }
