package optschema

// Status is the lifecycle state of an optimization run.
type Status string

const (
	StatusComplete Status = "COMPLETE"
	StatusFailed   Status = "FAILED"
	StatusQueued   Status = "QUEUED"
	StatusRunning  Status = "RUNNING"
)

// Terminal reports whether a run in this state will not change again.
func (s Status) Terminal() bool { return s == StatusComplete || s == StatusFailed }

// OptimizationMethod selects the COPASI optimization algorithm.
type OptimizationMethod string

const (
	MethodSRES                OptimizationMethod = "SRES"
	MethodEvolutionaryProgram OptimizationMethod = "EVOLUTIONARY_PROGRAM"
	MethodGeneticAlgorithm    OptimizationMethod = "GENETIC_ALGORITHM"
	MethodGeneticAlgorithmSR  OptimizationMethod = "GENETIC_ALGORITHM_SR"
	MethodHookeJeeves         OptimizationMethod = "HOOKE_JEEVES"
	MethodLevenbergMarquardt  OptimizationMethod = "LEVENBERG_MARQUARDT"
	MethodNelderMead          OptimizationMethod = "NELDER_MEAD"
	MethodParticleSwarm       OptimizationMethod = "PARTICLE_SWARM"
	MethodPraxis              OptimizationMethod = "PRAXIS"
	MethodRandomSearch        OptimizationMethod = "RANDOM_SEARCH"
	MethodSimulatedAnnealing  OptimizationMethod = "SIMULATED_ANNEALING"
	MethodSteepestDescent     OptimizationMethod = "STEEPEST_DESCENT"
	MethodTruncatedNewton     OptimizationMethod = "TRUNCATED_NEWTON"
)

// ParameterDataType is the numeric type of a method parameter value.
type ParameterDataType string

const (
	DataTypeDouble ParameterDataType = "DOUBLE"
	DataTypeInt    ParameterDataType = "INT"
)

// ParameterName names a method tuning parameter.
type ParameterName string

const (
	ParamCoolingFactor         ParameterName = "COOLING_FACTOR"
	ParamIterationLimit        ParameterName = "ITERATION_LIMIT"
	ParamNumberOfGenerations   ParameterName = "NUMBER_OF_GENERATIONS"
	ParamNumberOfIterations    ParameterName = "NUMBER_OF_ITERATIONS"
	ParamPf                    ParameterName = "PF"
	ParamPopulationSize        ParameterName = "POPULATION_SIZE"
	ParamRandomNumberGenerator ParameterName = "RANDOM_NUMBER_GENERATOR"
	ParamRho                   ParameterName = "RHO"
	ParamScale                 ParameterName = "SCALE"
	ParamSeed                  ParameterName = "SEED"
	ParamStartTemperature      ParameterName = "START_TEMPERATURE"
	ParamStdDeviation          ParameterName = "STD_DEVIATION"
	ParamSwarmSize             ParameterName = "SWARM_SIZE"
	ParamTolerance             ParameterName = "TOLERANCE"
)

// ReferenceVariableType says whether a data column is the independent
// variable (time) or a fitted observable.
type ReferenceVariableType string

const (
	ReferenceDependent   ReferenceVariableType = "DEPENDENT"
	ReferenceIndependent ReferenceVariableType = "INDEPENDENT"
)
