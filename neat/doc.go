// Package neat implements NeuroEvolution of Augmenting Topologies (NEAT):
// genomes of node and connection genes, innovation tracking, structural and
// weight mutation, crossover, compatibility distance, speciation and the
// generational update.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	pop, err := neat.NewPopulation(config, nil)
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	for i := 0; i < 100 && !pop.Solved(); i++ {
//		next, stats, err := pop.RunGeneration(evalGenomes)
//		if err != nil {
//			log.Fatalf("Error running generation: %v", err)
//		}
//		slog.Info("generation", "stats", stats)
//		pop = next
//	}
//
// Networks are compiled from genomes by package nn.
package neat
